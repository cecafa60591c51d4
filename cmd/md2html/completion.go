package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // enum values
	FileGlob string   // comma-separated, e.g. "*.yaml,*.yml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed first arguments, e.g. themes subcommands
	TakesFiles  bool
	FilePattern string
}

// completionMeta holds the hints a FlagSet cannot express. Names, types
// and descriptions come from the FlagSet itself.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

var flagCompletionMeta = map[string]completionMeta{
	"format": {Values: []string{"html", "pdf"}},

	"config":   {FileGlob: "*.yaml,*.yml"},
	"log-file": {FileGlob: "*.log,*.json"},

	"output": {IsDir: true},
	"assets": {IsDir: true},
}

const markdownGlob = "*.md,*.markdown"

// extractFlagsFromFlagSet converts the flags of fs, enriched with
// flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64", "uint", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

func commandFlags(cmd string) []flagDef {
	return extractFlagsFromFlagSet(buildFlagSet(cmd, &cmdFlags{}))
}

// getCommands returns the command registry for completion. Flags are read
// from the same FlagSets the commands parse.
func getCommands() []commandDef {
	return []commandDef{
		{Name: cmdConvert, Desc: "Convert one Markdown file", Flags: commandFlags(cmdConvert), TakesFiles: true, FilePattern: markdownGlob},
		{Name: cmdBatch, Desc: "Convert files and directories", Flags: commandFlags(cmdBatch), TakesFiles: true, FilePattern: markdownGlob},
		{Name: cmdServe, Desc: "Live preview of a file", Flags: commandFlags(cmdServe), TakesFiles: true, FilePattern: markdownGlob},
		{Name: cmdWatch, Desc: "Reconvert files on change", Flags: commandFlags(cmdWatch), TakesFiles: true, FilePattern: markdownGlob},
		{Name: cmdThemes, Desc: "Manage themes", Flags: commandFlags(cmdThemes), Args: []string{"list", "show", "export", "import", "select", "delete"}},
		{Name: cmdDoctor, Desc: "Check the environment", Flags: commandFlags(cmdDoctor)},
		{Name: cmdCompletion, Desc: "Generate shell completion script", Args: []string{"bash", "zsh", "fish", "powershell"}},
		{Name: cmdVersion, Desc: "Show version information"},
		{Name: cmdHelp, Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// globExtensions turns "*.md,*.markdown" into ["md", "markdown"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return exts
}

func longFlags(flags []flagDef) []string {
	var out []string
	for _, f := range flags {
		out = append(out, "--"+f.Long)
		if f.Short != "" {
			out = append(out, "-"+f.Short)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for md2html\n")
	b.WriteString("_md2html_completions() {\n")
	b.WriteString("    local cur prev cmd flags\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	fmt.Fprintf(&b, "    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\") $(compgen -f -X '!*.@(%s)' -- \"${cur}\"))\n",
		strings.Join(commandNames(cmds), " "), strings.Join(globExtensions(markdownGlob), "|"))
	b.WriteString("        return\n    fi\n\n")

	// Flag values are the same in every command, so one case covers them.
	b.WriteString("    case \"${prev}\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if seen[f.Long] {
				continue
			}
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			var action string
			switch f.Type {
			case flagEnum:
				action = fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"${cur}\"))", strings.Join(f.Values, " "))
			case flagFile:
				action = fmt.Sprintf("COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"${cur}\"))", strings.Join(globExtensions(f.FileGlob), "|"))
			case flagDir:
				action = "COMPREPLY=($(compgen -d -- \"${cur}\"))"
			default:
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        %s)\n            %s\n            return\n            ;;\n", pattern, action)
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range cmds {
		if len(c.Args) > 0 && len(c.Flags) == 0 {
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n            return\n            ;;\n",
				c.Name, strings.Join(c.Args, " "))
			continue
		}
		words := append(append([]string{}, c.Args...), longFlags(c.Flags)...)
		fmt.Fprintf(&b, "        %s)\n            flags=%q\n            ;;\n", c.Name, strings.Join(words, " "))
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    if [[ \"${cur}\" == -* ]]; then\n")
	b.WriteString("        COMPREPLY=($(compgen -W \"${flags}\" -- \"${cur}\"))\n")
	b.WriteString("        return\n    fi\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W \"${flags}\" -- \"${cur}\") $(compgen -f -X '!*.@(%s)' -- \"${cur}\"))\n",
		strings.Join(globExtensions(markdownGlob), "|"))
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _md2html_completions md2html\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshDescEscaper = strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)

func zshFlagSpec(f flagDef) string {
	desc := zshDescEscaper.Replace(f.Desc)
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":%s:_files -g \"*.(%s)\"", f.Long, strings.Join(globExtensions(f.FileGlob), "|"))
	case flagDir:
		action = fmt.Sprintf(":%s:_files -/", f.Long)
	default:
		action = fmt.Sprintf(":%s: ", f.Long)
	}
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

func generateZsh(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef md2html\n\n")
	b.WriteString("_md2html() {\n")
	b.WriteString("    local -a commands\n    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshDescEscaper.Replace(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	fmt.Fprintf(&b, "        _files -g \"*.(%s)\"\n", strings.Join(globExtensions(markdownGlob), "|"))
	b.WriteString("        return\n    fi\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "                '1:argument:(%s)'\n", strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "                '*:file:_files -g \"*.(%s)\"'\n", strings.Join(globExtensions(c.FilePattern), "|"))
		default:
			b.WriteString("                '*: :'\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n}\n\n")
	b.WriteString("_md2html \"$@\"\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

var fishQuoter = strings.NewReplacer(`\`, `\\`, "'", `\'`)

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for md2html\n")
	b.WriteString("function __fish_md2html_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\nend\n\n")
	b.WriteString("function __fish_md2html_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\nend\n\n")
	b.WriteString("complete -c md2html -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c md2html -n __fish_md2html_needs_command -a %s -d '%s'\n", c.Name, fishQuoter.Replace(c.Desc))
	}
	fmt.Fprintf(&b, "complete -c md2html -n __fish_md2html_needs_command -F -a '(__fish_complete_suffix .md)'\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_md2html_using_command %s'", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c md2html -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c md2html -n %s -F -a '(__fish_complete_suffix .md)'\n", cond)
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c md2html -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", fishQuoter.Replace(f.Desc))
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func psQuote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# PowerShell completion for md2html\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName md2html -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n")

	b.WriteString("    $words = @{\n")
	for _, c := range cmds {
		words := append(append([]string{}, c.Args...), longFlags(c.Flags)...)
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = psQuote(w)
		}
		fmt.Fprintf(&b, "        %s = @(%s)\n", psQuote(c.Name), strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($elements.Count -le 1 -or ($elements.Count -eq 2 -and $wordToComplete)) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n        return\n    }\n\n")
	b.WriteString("    $cmd = $elements[1]\n")
	b.WriteString("    if ($words.ContainsKey($cmd)) {\n")
	b.WriteString("        $words[$cmd] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("        }\n    }\n}\n")
	return b.String()
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(md2html completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(md2html completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    md2html completion fish > ~/.config/fish/completions/md2html.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    md2html completion powershell | Out-String | Invoke-Expression")
}
