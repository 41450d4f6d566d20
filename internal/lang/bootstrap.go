package lang

import "strings"

// Each bootstrap is passed inline to its interpreter followed by two
// arguments: the path of an error report file and the program text. It runs
// the text as the main program. An uncaught error has its message written to
// the report file and makes the interpreter exit non-zero. An exit requested
// by the program is left alone, so no report is written for it.

const pythonBootstrap = `import sys

def _coderun(report, src):
    del sys.argv[1:]
    try:
        exec(compile(src, "<string>", "exec"), {"__name__": "__main__"})
    except Exception as e:
        with open(report, "w", encoding="utf-8", errors="replace") as f:
            f.write(str(e))
        sys.exit(1)

_coderun(*sys.argv[-2:])
`

// nodeBootstrapTemplate takes a transform of the source text at {{transform}}.
const nodeBootstrapTemplate = `(() => {
  const fs = require("fs");
  const vm = require("vm");
  const [report, src] = process.argv.splice(-2);
  const fail = (e) => {
    const msg = e !== null && e !== undefined ? String(e.message) : String(e);
    try { fs.writeFileSync(report, msg); } catch (_) {}
    process.exit(1);
  };
  process.on("uncaughtException", fail);
  process.on("unhandledRejection", fail);
  try {
    const code = {{transform}};
    vm.runInThisContext(code, { filename: "main" });
  } catch (e) {
    fail(e);
  }
})();
`

var (
	nodeBootstrap       = strings.Replace(nodeBootstrapTemplate, "{{transform}}", "src", 1)
	typescriptBootstrap = strings.Replace(nodeBootstrapTemplate, "{{transform}}", stripTypes, 1)
)

// stripTypes erases TypeScript annotations without the experimental-feature
// warning node would otherwise print on the program's stderr.
const stripTypes = `((warn) => {
      process.emitWarning = () => {};
      try {
        return require("node:module").stripTypeScriptTypes(src);
      } finally {
        process.emitWarning = warn;
      }
    })(process.emitWarning)`

const rubyBootstrap = `$coderun_report, $coderun_src = ARGV.pop(2)
begin
  TOPLEVEL_BINDING.eval($coderun_src, $0)
rescue StandardError, ScriptError => e
  File.write($coderun_report, e.message)
  exit 1
end
`

const perlBootstrap = `($Coderun::report, $Coderun::src) = splice(@ARGV, -2);
eval "package main;\n" . $Coderun::src;
if (length $@) {
  my $msg = "$@";
  $msg =~ s/\s+\z//;
  open(my $fh, ">", $Coderun::report) or exit 255;
  print $fh $msg;
  close $fh;
  exit 255;
}
`

// The shell has no exceptions: a syntax error is the only failure it can
// report, so the text is checked with -n before it is evaluated. Only the
// first line of the complaint is kept.
const shellBootstrap = `report=$1
src=$2
shift 2
nl='
'
if ! err=$("$0" -n -c "$src" 2>&1); then
  printf '%s' "${err%%"$nl"*}" > "$report"
  exit 2
fi
unset report err nl
eval "unset src; $src"
`

const phpBootstrap = `[$__coderun_report, $__coderun_src] = array_splice($argv, -2);
$argc = count($argv);
try {
    eval('?>' . $__coderun_src);
} catch (\Throwable $__coderun_e) {
    file_put_contents($__coderun_report, $__coderun_e->getMessage());
    exit(255);
}
`
