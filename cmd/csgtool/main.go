package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/engine"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

// The csgtool version number. Set at build.
var version = "v0.1.0"

type config struct {
	Script    string        `cli:""        env:"CSGTOOL_SCRIPT"     help:"Brush script to evaluate, or - for stdin."`
	Air       int           `cli:""        env:"CSGTOOL_AIR"        help:"Volume id whose faces are wound inward."`
	Format    string        `cli:""        env:"CSGTOOL_FORMAT"     help:"Report format (json|summary)."`
	NoMesh    bool          `cli:""        env:"CSGTOOL_NO_MESH"    help:"Leave triangle data out of the JSON report."`
	Timeout   time.Duration `cli:",hidden" env:"CSGTOOL_TIMEOUT"    help:"Hard limit for evaluating the script."`
	LogLevel  string        `cli:""        env:"CSGTOOL_LOG_LEVEL"  help:"Log level (debug|info|warning|error)."`
	LogIndent bool          `cli:""        env:"CSGTOOL_LOG_INDENT" help:"Indent logs and the JSON report."`
	Version   bool          `cli:""        env:"-"                  help:"Show version."`
	Help      bool          `cli:""        env:"-"                  help:"Show help."`
}

func main() {
	conf := config{
		Air:      int(engine.DefaultVoid),
		Format:   formatJSON,
		Timeout:  engine.EvalTimeout,
		LogLevel: logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Evaluates a brush script, rebuilds its CSG tree and reports the visible surface.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := run(conf, os.Stdin, os.Stdout); err != nil {
		logs.Fatal(err)
	}
}

// run evaluates the configured script and writes its report to stdout.
func run(conf config, stdin io.Reader, stdout io.Writer) error {
	if err := validateConfig(conf); err != nil {
		return err
	}

	source, err := readScript(conf.Script, stdin)
	if err != nil {
		return err
	}

	eng := engine.NewEngine()
	eng.Timeout = conf.Timeout

	report, err := evaluate(eng, source, csg.VolumeID(conf.Air))
	for _, e := range report.Errors {
		logs.WithTag("script", conf.Script).
			WithTag("line", e.Line).
			Warn(errors.New(e.Message).WithType(ErrEvalFailed))
	}
	if err != nil {
		return errors.New("running script failed").
			WithTag("script", conf.Script).
			Wrap(err)
	}

	for _, issue := range report.Issues {
		logs.WithTag("script", conf.Script).
			WithTag("brush", issue.Brush).
			WithTag("side", issue.Side).
			WithTag("severity", issue.Severity.String()).
			Warn(issue)
	}

	if conf.NoMesh {
		report = withoutMeshes(report)
	}
	return writeReport(stdout, report, conf.Format, conf.LogIndent)
}

func validateConfig(conf config) error {
	if conf.Script == "" {
		return errors.New("script is not set")
	}
	if conf.Air < 0 || int64(conf.Air) > math.MaxUint32 {
		return errors.Newf("air volume %d is out of range", conf.Air)
	}
	if conf.Format != formatJSON && conf.Format != formatSummary {
		return errors.Newf("unknown report format %q", conf.Format).
			WithType(ErrUnknownFormat)
	}
	if conf.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func readScript(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.New("reading script failed").
			WithTag("script", path).
			Wrap(err)
	}
	return string(data), nil
}
