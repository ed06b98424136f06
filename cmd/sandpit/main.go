// Command sandpit runs scripts in the sandbox from the command line. It is
// a thin collaborator around the embedding API: it decides where source
// comes from, which limit profile applies and which capabilities get bound,
// then hands everything to sandpit.Evaluate.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	_ "github.com/tliron/commonlog/simple"

	"sandpit"
	"sandpit/internal/config"
	"sandpit/internal/evaluator"
	"sandpit/internal/lexer"
	"sandpit/internal/token"
)

var log = commonlog.GetLogger("sandpit")

type cli struct {
	Verbose int `short:"v" type:"counter" help:"Increase log verbosity."`

	Run runCmd `cmd:"" default:"withargs" help:"Run a script from a file or stdin."`
}

type runCmd struct {
	Path   string `arg:"" optional:"" help:"Script file ('-' or omitted reads stdin)."`
	Tokens bool   `help:"Print the token stream instead of running."`
	AST    bool   `help:"Print the parsed tree instead of running."`
	Limits string `type:"existingfile" help:"YAML limit profile to apply."`
}

func main() {
	var c cli
	ktx := kong.Parse(&c,
		kong.Name("sandpit"),
		kong.Description("Run restricted Python-subset scripts in a capability sandbox."),
		kong.UsageOnError(),
	)
	commonlog.Configure(c.Verbose, nil)
	ktx.FatalIfErrorf(ktx.Run())
}

func (r *runCmd) Run() error {
	source, name, err := r.readSource()
	if err != nil {
		return err
	}

	if r.Tokens {
		return printTokens(source)
	}
	if r.AST {
		prog, err := sandpit.Parse(source)
		if err != nil {
			return err
		}
		fmt.Println(prog.String())
		return nil
	}

	lim, builtins, err := r.loadLimits()
	if err != nil {
		return err
	}

	reg := sandpit.NewRegistry()
	if err := reg.Bind("clock", func(...any) (any, error) {
		return float64(time.Now().UnixNano()) / 1e9, nil
	}); err != nil {
		return err
	}

	opts := []sandpit.Option{
		sandpit.WithRegistry(reg),
		sandpit.WithLimits(lim),
		sandpit.WithStdout(os.Stdout),
	}
	if builtins != nil {
		opts = append(opts, sandpit.WithBuiltins(builtins...))
	}

	log.Infof("running %s", name)
	result, err := sandpit.New(opts...).Evaluate(source)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Println(render(result))
	}
	return nil
}

func (r *runCmd) readSource() (source, name string, err error) {
	if r.Path == "" || r.Path == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", "", fmt.Errorf("no script file given and stdin is a terminal")
		}
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(b), "<stdin>", nil
	}
	b, err := os.ReadFile(r.Path)
	if err != nil {
		return "", "", err
	}
	return string(b), r.Path, nil
}

func (r *runCmd) loadLimits() (sandpit.Limits, []string, error) {
	if r.Limits == "" {
		return sandpit.Limits{}, nil, nil
	}
	profile, err := config.LoadProfile(r.Limits)
	if err != nil {
		return sandpit.Limits{}, nil, err
	}
	wall, err := profile.Limits.WallDuration()
	if err != nil {
		return sandpit.Limits{}, nil, err
	}
	known := map[string]bool{}
	for _, n := range evaluator.BuiltinNames() {
		known[n] = true
	}
	for _, n := range profile.Builtins {
		if !known[n] {
			log.Warningf("profile names unknown builtin %q", n)
		}
	}
	log.Infof("limits: steps=%d depth=%d wall=%s memory=%d",
		profile.Limits.Steps, profile.Limits.Depth, wall, profile.Limits.Memory)
	return sandpit.Limits{
		MaxSteps:  profile.Limits.Steps,
		MaxDepth:  profile.Limits.Depth,
		MaxWall:   wall,
		MaxMemory: profile.Limits.Memory,
	}, profile.Builtins, nil
}

func printTokens(source string) error {
	l := lexer.New(source)
	for {
		tok := l.NextToken()
		fmt.Printf("%4d:%-3d  %-10s  %q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			break
		}
	}
	for _, e := range l.Errors() {
		fmt.Fprintln(os.Stderr, "lex error:", e)
	}
	return nil
}

// render prints host values the way scripts would see them.
func render(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	default:
		return fmt.Sprintf("%v", x)
	}
}
