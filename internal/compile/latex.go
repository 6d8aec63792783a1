package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
)

// Supported engines
const (
	EngineTectonic = "tectonic"
	EnginePDFLaTeX = "pdflatex"
)

// DefaultTimeout bounds one compilation
const DefaultTimeout = 120 * time.Second

// snippetRadius is the number of lines shown on each side of a failing line
const snippetRadius = 2

var (
	// tectonic: "error: Resume.tex:42: Undefined control sequence"
	tectonicError = regexp.MustCompile(`(?m)^error: [^\n:]*\.tex:(\d+): (.+)$`)
	// pdflatex: "! Undefined control sequence." followed later by "l.42 \foo"
	texErrorMessage = regexp.MustCompile(`(?m)^! (.+)$`)
	texErrorLine    = regexp.MustCompile(`(?m)^l\.(\d+)`)
)

// Compiler runs a LaTeX engine as a subprocess
type Compiler struct {
	engine  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCompiler creates a compiler from configuration
func NewCompiler(cfg config.Compiler, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Compiler{
		engine:  cfg.Engine,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logger.Named("compile"),
	}
	if c.engine == "" {
		c.engine = EngineTectonic
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c
}

// Engine returns the engine binary name
func (c *Compiler) Engine() string {
	return c.engine
}

// Compile builds texPath into a PDF next to it and returns the PDF path
func (c *Compiler) Compile(ctx context.Context, texPath string) (string, error) {
	bin, err := exec.LookPath(c.engine)
	if err != nil {
		return "", &Error{
			Message: fmt.Sprintf("%s not found in PATH", c.engine),
			Cause:   err,
		}
	}
	if _, err := os.Stat(texPath); err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to read LaTeX file: %s", texPath), Cause: err}
	}

	dir := filepath.Dir(texPath)
	base := filepath.Base(texPath)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, c.args(base)...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	logOutput := output.String()
	if c.engine == EnginePDFLaTeX {
		// pdflatex writes the detailed error to its .log file
		if data, err := os.ReadFile(filepath.Join(dir, strings.TrimSuffix(base, ".tex")+".log")); err == nil {
			logOutput = string(data)
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &Error{
			Message:   fmt.Sprintf("%s timed out after %s", c.engine, c.timeout),
			LogOutput: logOutput,
			Cause:     ctx.Err(),
		}
	}

	pdfPath := filepath.Join(dir, strings.TrimSuffix(base, ".tex")+".pdf")
	_, statErr := os.Stat(pdfPath)
	if runErr != nil || statErr != nil {
		compileErr := &Error{
			Message:   "PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
		if runErr != nil {
			compileErr.Message = fmt.Sprintf("%s failed", c.engine)
		}
		if line, msg := ParseLog(logOutput); line > 0 || msg != "" {
			compileErr.Line = line
			if msg != "" {
				compileErr.Message = msg
			}
			if source, err := os.ReadFile(texPath); err == nil && line > 0 {
				compileErr.Snippet = Snippet(string(source), line, snippetRadius)
			}
		}
		return "", compileErr
	}

	CleanupAuxFiles(texPath)
	c.logger.Debug("compiled",
		zap.String("engine", c.engine),
		zap.String("pdf", pdfPath),
		zap.Duration("elapsed", time.Since(start)))
	return pdfPath, nil
}

func (c *Compiler) args(base string) []string {
	if c.engine == EnginePDFLaTeX {
		return []string{"-interaction=nonstopmode", "-halt-on-error", "-output-directory", ".", base}
	}
	return []string{base, "--outdir", "."}
}

// ParseLog extracts the first error message and source line number from an engine log
func ParseLog(log string) (int, string) {
	if m := tectonicError.FindStringSubmatch(log); m != nil {
		line, _ := strconv.Atoi(m[1])
		return line, strings.TrimSpace(m[2])
	}

	msg := ""
	if m := texErrorMessage.FindStringSubmatchIndex(log); m != nil {
		msg = strings.TrimSpace(strings.TrimSuffix(log[m[2]:m[3]], "."))
		log = log[m[1]:]
	}
	if m := texErrorLine.FindStringSubmatch(log); m != nil {
		line, _ := strconv.Atoi(m[1])
		return line, msg
	}
	return 0, msg
}

// Snippet returns the numbered source lines around line (1-based), marking the line itself
func Snippet(source string, line, radius int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	from := max(line-radius, 1)
	to := min(line+radius, len(lines))
	width := len(strconv.Itoa(to))

	var b strings.Builder
	for n := from; n <= to; n++ {
		marker := " "
		if n == line {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, n, lines[n-1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// CleanupAuxFiles removes the auxiliary files an engine leaves next to texPath.
// Compile calls it after a successful build; failed builds keep their log.
func CleanupAuxFiles(texPath string) {
	stem := strings.TrimSuffix(texPath, ".tex")
	for _, ext := range []string{".aux", ".log", ".out", ".toc"} {
		_ = os.Remove(stem + ext)
	}
}
