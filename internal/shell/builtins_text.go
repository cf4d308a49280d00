package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/saintfish/chardet"
	"golang.org/x/crypto/blake2b"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

const defaultLineCount = 10

func textCommands() []Command {
	return []Command{
		{Name: "cat", Description: "Print file contents", Usage: "cat <file...>", Category: CategoryText, Run: runCat},
		{Name: "grep", Description: "Print lines containing a pattern", Usage: "grep [-i] <pattern> <file...>", Category: CategoryText, Run: runGrep},
		{Name: "wc", Description: "Count lines, words and bytes", Usage: "wc <file...>", Category: CategoryText, Run: runWc},
		{Name: "head", Description: "Print the first lines of a file", Usage: "head [-n N] <file>", Category: CategoryText, Run: runHead},
		{Name: "tail", Description: "Print the last lines of a file", Usage: "tail [-n N] <file>", Category: CategoryText, Run: runTail},
		{Name: "echo", Description: "Print text, expanding $VARIABLES", Usage: "echo <text...>", Category: CategoryText, Run: runEcho},
		{Name: "file", Description: "Detect the content type of an item", Usage: "file <name>", Category: CategoryText, Run: runFile},
		{Name: "gzip", Description: "Compress a file into <name>.gz", Usage: "gzip <file>", Category: CategoryText, Run: runGzip},
		{Name: "gunzip", Description: "Decompress a .gz file", Usage: "gunzip <file.gz>", Category: CategoryText, Run: runGunzip},
		{Name: "b2sum", Description: "Print BLAKE2b-512 checksums", Usage: "b2sum <file...>", Category: CategoryText, Run: runB2sum},
	}
}

// readFile resolves name in dir and requires a file. On failure it returns
// nil and the complaint line for cmd.
func (sh *Shell) readFile(cmd string, dir vfs.Path, name string) (*vfs.Item, string) {
	_, it := sh.resolveChild(dir, name)
	switch {
	case it == nil:
		return nil, fmt.Sprintf("%s: %s: No such file or directory", cmd, name)
	case it.IsFolder():
		return nil, fmt.Sprintf("%s: %s: Is a directory", cmd, name)
	}
	return it, ""
}

// splitLines splits content into lines without a phantom trailing empty line
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func runCat(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return fail("cat: missing file operand"), nil
	}

	var b strings.Builder
	failed := false
	for i, name := range args {
		it, msg := sh.readFile("cat", state.CurrentDirectory, name)
		part := msg
		if it != nil {
			part = it.Content
		} else {
			failed = true
		}
		b.WriteString(part)
		if i < len(args)-1 && part != "" && !strings.HasSuffix(part, "\n") {
			b.WriteString("\n")
		}
	}

	res := ok(b.String())
	if failed {
		res.ExitCode = 1
	}
	return res, nil
}

// runGrep does a literal substring match per line. Missing files are reported
// inline and do not stop the scan. Exit code is 0 only when something matched
// and every file was readable.
func runGrep(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	ignoreCase := false
	for len(args) > 0 && args[0] == "-i" {
		ignoreCase = true
		args = args[1:]
	}
	if len(args) < 2 {
		return fail("grep: usage: grep [-i] <pattern> <file...>"), nil
	}

	pattern := unquote(args[0])
	if ignoreCase {
		pattern = strings.ToLower(pattern)
	}
	matches := func(line string) bool {
		if ignoreCase {
			line = strings.ToLower(line)
		}
		return strings.Contains(line, pattern)
	}

	var r report
	matched := false
	for _, name := range args[1:] {
		it, msg := sh.readFile("grep", state.CurrentDirectory, name)
		if it == nil {
			r.errorf("%s", msg)
			continue
		}
		for i, line := range splitLines(it.Content) {
			if matches(line) {
				r.add(fmt.Sprintf("%s:%d:%s", name, i+1, line))
				matched = true
			}
		}
	}

	res := r.result()
	if !matched {
		res.ExitCode = 1
	}
	return res, nil
}

func runWc(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("wc"), nil
	}

	var r report
	for _, name := range args {
		it, msg := sh.readFile("wc", state.CurrentDirectory, name)
		if it == nil {
			r.errorf("%s", msg)
			continue
		}
		lines := len(splitLines(it.Content))
		words := len(strings.Fields(it.Content))
		// bytes, matching Item.Size
		r.add(fmt.Sprintf("%d %d %d %s", lines, words, len(it.Content), name))
	}
	return r.result(), nil
}

// parseLineCount extracts "-n N", "-nN" or "-N" ahead of the operands
func parseLineCount(cmd string, args []string) (int, []string, *Result) {
	n := defaultLineCount
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		var raw string
		switch {
		case a == "-n":
			if i+1 >= len(args) {
				res := fail("%s: option requires an argument -- 'n'", cmd)
				return 0, nil, &res
			}
			i++
			raw = args[i]
		case strings.HasPrefix(a, "-n"):
			raw = a[2:]
		case len(a) > 1 && a[0] == '-':
			raw = a[1:]
		default:
			rest = append(rest, a)
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			res := fail("%s: invalid number of lines: '%s'", cmd, raw)
			return 0, nil, &res
		}
		n = v
	}
	return n, rest, nil
}

func runHead(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	return sliceLines(sh, "head", args, state, func(lines []string, n int) []string {
		return lines[:min(n, len(lines))]
	})
}

func runTail(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	return sliceLines(sh, "tail", args, state, func(lines []string, n int) []string {
		return lines[max(len(lines)-n, 0):]
	})
}

func sliceLines(sh *Shell, cmd string, args []string, state State, pick func([]string, int) []string) (Result, error) {
	n, operands, bad := parseLineCount(cmd, args)
	if bad != nil {
		return *bad, nil
	}
	if len(operands) == 0 {
		return missingOperand(cmd), nil
	}
	it, msg := sh.readFile(cmd, state.CurrentDirectory, operands[0])
	if it == nil {
		return fail("%s", msg), nil
	}
	return ok(joinLines(pick(splitLines(it.Content), n))), nil
}

// runEcho joins its arguments, strips one surrounding quote pair and expands
// $VAR / ${VAR} from the session environment unless single-quoted.
func runEcho(_ context.Context, _ *Shell, args []string, state State) (Result, error) {
	text := strings.Join(args, " ")
	if len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'' {
		return ok(text[1 : len(text)-1]), nil
	}
	expanded := os.Expand(text, func(key string) string {
		return state.Environment[key]
	})
	return ok(unquote(expanded)), nil
}

func runFile(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("file"), nil
	}

	var r report
	for _, name := range args {
		_, it := sh.resolveTarget(state.CurrentDirectory, name)
		switch {
		case it == nil:
			r.errorf("%s: cannot open (No such file or directory)", name)
		case it.IsFolder():
			r.add(name + ": directory")
		case it.Content == "":
			r.add(name + ": empty")
		default:
			r.add(name + ": " + describeContent([]byte(it.Content)))
		}
	}
	return r.result(), nil
}

// describeContent reports the MIME type, plus the detected charset for text
func describeContent(data []byte) string {
	mime := mimetype.Detect(data)
	base, _, _ := strings.Cut(mime.String(), ";")
	if !strings.HasPrefix(base, "text/") {
		return base
	}

	charset := "unknown"
	if best, err := chardet.NewTextDetector().DetectBest(data); err == nil && best != nil {
		charset = best.Charset
	}
	return fmt.Sprintf("%s, %s text", base, charset)
}

// runGzip writes a compressed copy next to the source, which is kept
func runGzip(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("gzip"), nil
	}
	name := args[0]
	it, msg := sh.readFile("gzip", state.CurrentDirectory, name)
	if it == nil {
		return fail("%s", msg), nil
	}
	if strings.HasSuffix(it.Name, ".gz") {
		return fail("gzip: %s already has .gz suffix -- unchanged", name), nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = it.Name
	zw.ModTime = it.Modified
	if _, err := zw.Write([]byte(it.Content)); err != nil {
		return Result{}, fmt.Errorf("compress %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("compress %s: %w", name, err)
	}

	target := it.Name + ".gz"
	if res := sh.store.CreateItem(vfs.KindFile, target, state.CurrentDirectory, buf.String()); !res.Success {
		return fail("gzip: %s: %s", target, res.Message()), nil
	}
	return ok(""), nil
}

func runGunzip(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("gunzip"), nil
	}
	name := args[0]
	it, msg := sh.readFile("gunzip", state.CurrentDirectory, name)
	if it == nil {
		return fail("%s", msg), nil
	}
	if !strings.HasSuffix(it.Name, ".gz") || it.Name == ".gz" {
		return fail("gunzip: %s: unknown suffix -- ignored", name), nil
	}

	zr, err := gzip.NewReader(strings.NewReader(it.Content))
	if err != nil {
		return fail("gunzip: %s: not in gzip format", name), nil
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return fail("gunzip: %s: %v", name, err), nil
	}

	target := strings.TrimSuffix(it.Name, ".gz")
	if res := sh.store.CreateItem(vfs.KindFile, target, state.CurrentDirectory, string(data)); !res.Success {
		return fail("gunzip: %s: %s", target, res.Message()), nil
	}
	return ok(""), nil
}

func runB2sum(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("b2sum"), nil
	}

	var r report
	for _, name := range args {
		it, msg := sh.readFile("b2sum", state.CurrentDirectory, name)
		if it == nil {
			r.errorf("%s", msg)
			continue
		}
		sum := blake2b.Sum512([]byte(it.Content))
		r.add(fmt.Sprintf("%x  %s", sum, name))
	}
	return r.result(), nil
}
