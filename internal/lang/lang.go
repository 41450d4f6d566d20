package lang

import (
	"fmt"
	"sort"
	"strings"
)

// Language describes how program text in one language is handed to its interpreter.
type Language struct {
	Name        string // lookup key, e.g. "python"
	Display     string // human-readable name used in diagnostics
	Extension   string // file suffix including the dot
	Interpreter string // binary resolved via PATH
	// Flag makes the interpreter run the following argument as inline code.
	Flag string
	// Bootstrap is the inline code that runs the program text as main and
	// reports uncaught errors; see bootstrap.go.
	Bootstrap string
	// EndOptions puts "--" before the bootstrap arguments so they are never
	// parsed as interpreter options.
	EndOptions bool
	// NameArg passes the interpreter name as the first bootstrap argument ($0).
	NameArg bool
	// Hello is a minimal program used by the check command.
	Hello string
}

var builtins = map[string]Language{
	"python": {
		Name:        "python",
		Display:     "Python",
		Extension:   ".py",
		Interpreter: "python3",
		Flag:        "-c",
		Bootstrap:   pythonBootstrap,
		Hello:       `print("coderun: python ok")`,
	},
	"javascript": {
		Name:        "javascript",
		Display:     "JavaScript",
		Extension:   ".js",
		Interpreter: "node",
		Flag:        "-e",
		Bootstrap:   nodeBootstrap,
		EndOptions:  true,
		Hello:       `console.log("coderun: javascript ok")`,
	},
	"typescript": {
		Name:        "typescript",
		Display:     "TypeScript",
		Extension:   ".ts",
		Interpreter: "node",
		Flag:        "-e",
		Bootstrap:   typescriptBootstrap,
		EndOptions:  true,
		Hello:       `const msg: string = "coderun: typescript ok"; console.log(msg);`,
	},
	"php": {
		Name:        "php",
		Display:     "PHP",
		Extension:   ".php",
		Interpreter: "php",
		Flag:        "-r",
		Bootstrap:   phpBootstrap,
		EndOptions:  true,
		Hello:       `<?php echo "coderun: php ok\n";`,
	},
	"ruby": {
		Name:        "ruby",
		Display:     "Ruby",
		Extension:   ".rb",
		Interpreter: "ruby",
		Flag:        "-e",
		Bootstrap:   rubyBootstrap,
		EndOptions:  true,
		Hello:       `puts "coderun: ruby ok"`,
	},
	"perl": {
		Name:        "perl",
		Display:     "Perl",
		Extension:   ".pl",
		Interpreter: "perl",
		Flag:        "-e",
		Bootstrap:   perlBootstrap,
		EndOptions:  true,
		Hello:       `print "coderun: perl ok\n";`,
	},
	"shell": {
		Name:        "shell",
		Display:     "shell",
		Extension:   ".sh",
		Interpreter: "sh",
		Flag:        "-c",
		Bootstrap:   shellBootstrap,
		NameArg:     true,
		Hello:       `echo "coderun: shell ok"`,
	},
}

// aliases map common short names to builtin languages.
var aliases = map[string]string{
	"py":   "python",
	"js":   "javascript",
	"node": "javascript",
	"ts":   "typescript",
	"rb":   "ruby",
	"pl":   "perl",
	"sh":   "shell",
}

// Default is the language used when none is configured.
const Default = "python"

// Lookup returns the builtin language registered under name or one of its aliases.
func Lookup(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	l, ok := builtins[key]
	if !ok {
		return Language{}, fmt.Errorf("unsupported language %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return l, nil
}

// ByExtension returns the builtin language whose extension matches ext.
// The leading dot is optional.
func ByExtension(ext string) (Language, bool) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, l := range builtins {
		if l.Extension == ext {
			return l, true
		}
	}
	return Language{}, false
}

// Names returns the builtin language names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the builtin languages sorted by name.
func All() []Language {
	names := Names()
	out := make([]Language, 0, len(names))
	for _, name := range names {
		out = append(out, builtins[name])
	}
	return out
}

// WithInterpreter returns a copy of l that runs through bin instead of the default binary.
// An empty bin leaves l unchanged.
func (l Language) WithInterpreter(bin string) Language {
	if bin != "" {
		l.Interpreter = bin
	}
	return l
}

// Args builds the interpreter argv (without the binary) that runs text as the
// main program and writes an uncaught error's message to report.
func (l Language) Args(report, text string) []string {
	args := []string{l.Flag, l.Bootstrap}
	if l.EndOptions {
		args = append(args, "--")
	}
	if l.NameArg {
		args = append(args, l.Interpreter)
	}
	return append(args, report, text)
}

// NoSourceMessage is the diagnostic used when the directory holds no file for l.
func (l Language) NoSourceMessage() string {
	return fmt.Sprintf("No %s file found", l.Display)
}

func (l Language) String() string { return l.Name }
