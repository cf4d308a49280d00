package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

func filesystemCommands() []Command {
	return []Command{
		{Name: "ls", Description: "List directory contents", Usage: "ls [-l] [dir]", Category: CategoryFilesystem, Run: runLs},
		{Name: "cd", Description: "Change the current directory", Usage: "cd [dir]", Category: CategoryFilesystem, Run: runCd},
		{Name: "pwd", Description: "Print the current directory", Usage: "pwd", Category: CategoryFilesystem, Run: runPwd},
		{Name: "mkdir", Description: "Create directories", Usage: "mkdir <name...>", Category: CategoryFilesystem, Run: runMkdir},
		{Name: "touch", Description: "Create empty files", Usage: "touch <name...>", Category: CategoryFilesystem, Run: runTouch},
		{Name: "rm", Description: "Remove files or directories", Usage: "rm <name...>", Category: CategoryFilesystem, Run: runRm},
		{Name: "rmdir", Description: "Remove empty directories", Usage: "rmdir <name...>", Category: CategoryFilesystem, Run: runRmdir},
		{Name: "cp", Description: "Copy an item into a directory", Usage: "cp <src> <dest>", Category: CategoryFilesystem, Run: runCp},
		{Name: "mv", Description: "Move an item into a directory, or rename it", Usage: "mv <src> <dest>", Category: CategoryFilesystem, Run: runMv},
		{Name: "tree", Description: "Show a directory tree", Usage: "tree [dir]", Category: CategoryFilesystem, Run: runTree},
		{Name: "find", Description: "Find items below the current directory by glob", Usage: "find [glob]", Category: CategoryFilesystem, Run: runFind},
		{Name: "stat", Description: "Show item metadata", Usage: "stat <name>", Category: CategoryFilesystem, Run: runStat},
		{Name: "write", Description: "Write text to a file, creating it if needed", Usage: "write <file> <text...>", Category: CategoryFilesystem, Run: runWrite},
		{Name: "copy", Description: "Copy an item to the clipboard", Usage: "copy <name>", Category: CategoryFilesystem, Run: runClipboardCopy},
		{Name: "cut", Description: "Cut an item to the clipboard", Usage: "cut <name>", Category: CategoryFilesystem, Run: runClipboardCut},
		{Name: "paste", Description: "Paste the clipboard into the current directory", Usage: "paste", Category: CategoryFilesystem, Run: runPaste},
		{Name: "undo", Description: "Undo the last filesystem operation", Usage: "undo", Category: CategoryFilesystem, Run: runUndo},
	}
}

func runLs(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	flags, operands := splitFlags(args)
	long := flags["-l"] || flags["--long"] || flags["-la"] || flags["-al"]

	target := ""
	if len(operands) > 0 {
		target = operands[0]
	}
	_, it := sh.resolveTarget(state.CurrentDirectory, target)
	if it == nil {
		return fail("ls: cannot access '%s': No such file or directory", target), nil
	}

	entries := []*vfs.Item{it}
	if it.IsFolder() {
		entries = it.Children
	}

	if !long {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		return ok(strings.Join(names, " ")), nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, longEntry(e))
	}
	return ok(joinLines(lines)), nil
}

// longEntry formats one ls -l line: <d|-><rwx> <size> <date> <name>
func longEntry(it *vfs.Item) string {
	kind := "-"
	if it.IsFolder() {
		kind = "d"
	}
	return fmt.Sprintf("%s%s %8d %s %s", kind, it.Permissions, it.Size, it.Modified.Format("2006-01-02"), it.Name)
}

func runCd(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	arg := "~"
	if len(args) > 0 {
		arg = args[0]
	}

	target, it := sh.resolveTarget(state.CurrentDirectory, arg)
	if it == nil {
		return fail("cd: %s: No such file or directory", arg), nil
	}
	if !it.IsFolder() {
		return fail("cd: %s: Not a directory", arg), nil
	}

	return okWith("", &Effect{
		Chdir: &target,
		SetEnv: map[string]string{
			"PWD":    sh.DisplayPath(target),
			"OLDPWD": sh.DisplayPath(state.CurrentDirectory),
		},
	}), nil
}

func runPwd(_ context.Context, sh *Shell, _ []string, state State) (Result, error) {
	return ok(sh.DisplayPath(state.CurrentDirectory)), nil
}

func runMkdir(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	_, names := splitFlags(args)
	if len(names) == 0 {
		return missingOperand("mkdir"), nil
	}

	var r report
	for _, name := range names {
		if res := sh.store.CreateItem(vfs.KindFolder, name, state.CurrentDirectory, ""); !res.Success {
			r.errorf("mkdir: cannot create directory '%s': %s", name, res.Message())
		}
	}
	return r.result(), nil
}

func runTouch(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	_, names := splitFlags(args)
	if len(names) == 0 {
		return missingOperand("touch"), nil
	}

	var r report
	for _, name := range names {
		if _, it := sh.resolveChild(state.CurrentDirectory, name); it != nil {
			continue
		}
		if res := sh.store.CreateItem(vfs.KindFile, name, state.CurrentDirectory, ""); !res.Success {
			r.errorf("touch: cannot touch '%s': %s", name, res.Message())
		}
	}
	return r.result(), nil
}

func runRm(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	_, names := splitFlags(args)
	if len(names) == 0 {
		return missingOperand("rm"), nil
	}

	var r report
	for _, name := range names {
		p, it := sh.resolveChild(state.CurrentDirectory, name)
		if it == nil {
			r.errorf("rm: cannot remove '%s': No such file or directory", name)
			continue
		}
		if res := sh.store.DeleteItem(p); !res.Success {
			r.errorf("rm: cannot remove '%s': %s", name, res.Message())
		}
	}
	return r.result(), nil
}

func runRmdir(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("rmdir"), nil
	}

	var r report
	for _, name := range args {
		p, it := sh.resolveChild(state.CurrentDirectory, name)
		switch {
		case it == nil:
			r.errorf("rmdir: failed to remove '%s': No such file or directory", name)
		case !it.IsFolder():
			r.errorf("rmdir: failed to remove '%s': Not a directory", name)
		case len(it.Children) > 0:
			r.errorf("rmdir: failed to remove '%s': Directory not empty", name)
		default:
			if res := sh.store.DeleteItem(p); !res.Success {
				r.errorf("rmdir: failed to remove '%s': %s", name, res.Message())
			}
		}
	}
	return r.result(), nil
}

func runCp(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	_, operands := splitFlags(args)
	if len(operands) < 2 {
		return fail("cp: missing destination operand"), nil
	}
	src, dst := operands[0], operands[1]

	srcPath, it := sh.resolveChild(state.CurrentDirectory, src)
	if it == nil {
		return fail("cp: cannot stat '%s': No such file or directory", src), nil
	}
	dstPath, dest := sh.resolveTarget(state.CurrentDirectory, dst)
	if dest == nil || !dest.IsFolder() {
		return fail("cp: target '%s' is not a directory", dst), nil
	}

	if res := sh.store.CopyItem(srcPath, dstPath); !res.Success {
		return fail("cp: cannot copy '%s': %s", src, res.Message()), nil
	}
	return ok(""), nil
}

// runMv moves into an existing folder, renames when the destination does not
// exist, and refuses to overwrite a file.
func runMv(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	_, operands := splitFlags(args)
	if len(operands) < 2 {
		return fail("mv: missing destination operand"), nil
	}
	src, dst := operands[0], operands[1]

	srcPath, it := sh.resolveChild(state.CurrentDirectory, src)
	if it == nil {
		return fail("mv: cannot stat '%s': No such file or directory", src), nil
	}

	dstPath, dest := sh.resolveTarget(state.CurrentDirectory, dst)
	var res vfs.Result
	switch {
	case dest == nil && !strings.Contains(dst, "/"):
		res = sh.store.RenameItem(srcPath, dst)
	case dest == nil:
		return fail("mv: cannot move '%s' to '%s': No such file or directory", src, dst), nil
	case dest.IsFolder():
		res = sh.store.MoveItem(srcPath, dstPath)
	default:
		return fail("mv: cannot move '%s' to '%s': %s", src, dst, vfs.ErrNameInvalid), nil
	}

	if !res.Success {
		return fail("mv: cannot move '%s' to '%s': %s", src, dst, res.Message()), nil
	}
	return ok(""), nil
}

func runTree(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	_, it := sh.resolveTarget(state.CurrentDirectory, target)
	if it == nil {
		return fail("tree: %s: No such file or directory", target), nil
	}
	if !it.IsFolder() {
		return ok(it.Name), nil
	}

	var b strings.Builder
	b.WriteString(target)
	dirs, files := drawTree(&b, it, "")
	fmt.Fprintf(&b, "\n\n%d directories, %d files", dirs, files)
	return ok(b.String()), nil
}

func drawTree(b *strings.Builder, folder *vfs.Item, prefix string) (dirs, files int) {
	for i, c := range folder.Children {
		branch, indent := "├── ", "│   "
		if i == len(folder.Children)-1 {
			branch, indent = "└── ", "    "
		}
		b.WriteString("\n" + prefix + branch + c.Name)
		if c.IsFolder() {
			dirs++
			d, f := drawTree(b, c, prefix+indent)
			dirs += d
			files += f
		} else {
			files++
		}
	}
	return dirs, files
}

// runFind matches a doublestar glob against each descendant's relative name
// path and against its bare name.
func runFind(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	pattern := "**"
	if len(args) > 0 {
		pattern = unquote(args[0])
	}
	if !doublestar.ValidatePattern(pattern) {
		return fail("find: bad pattern '%s'", pattern), nil
	}

	root := sh.store.GetItemByPath(state.CurrentDirectory)
	if root == nil {
		return fail("find: current directory no longer exists"), nil
	}

	var matches []string
	var visit func(it *vfs.Item, rel string)
	visit = func(it *vfs.Item, rel string) {
		for _, c := range it.Children {
			p := c.Name
			if rel != "" {
				p = rel + "/" + c.Name
			}
			full, _ := doublestar.Match(pattern, p)
			base, _ := doublestar.Match(pattern, c.Name)
			if full || base {
				matches = append(matches, "./"+p)
			}
			visit(c, p)
		}
	}
	visit(root, "")

	return ok(joinLines(matches)), nil
}

func runStat(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("stat"), nil
	}
	_, it := sh.resolveTarget(state.CurrentDirectory, args[0])
	if it == nil {
		return fail("stat: cannot stat '%s': No such file or directory", args[0]), nil
	}

	kind := "regular file"
	if it.IsFolder() {
		kind = "directory"
	}
	lines := []string{
		"  File: " + it.Name,
		"    ID: " + it.ID,
		fmt.Sprintf("  Size: %d\tType: %s", it.Size, kind),
		"Access: " + it.Permissions.String(),
		"Modify: " + it.Modified.Format(time.RFC3339),
		"Create: " + it.Created.Format(time.RFC3339),
	}
	if it.IsFolder() {
		lines = append(lines, fmt.Sprintf(" Items: %d", len(it.Children)))
	}
	return ok(joinLines(lines)), nil
}

func runWrite(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("write"), nil
	}
	name := args[0]
	content := unquote(strings.Join(args[1:], " "))

	p, it := sh.resolveChild(state.CurrentDirectory, name)
	var res vfs.Result
	switch {
	case it == nil:
		res = sh.store.CreateItem(vfs.KindFile, name, state.CurrentDirectory, content)
	case it.IsFolder():
		return fail("write: %s: Is a directory", name), nil
	default:
		res = sh.store.UpdateFileContent(p, content)
	}

	if !res.Success {
		return fail("write: %s: %s", name, res.Message()), nil
	}
	return ok(""), nil
}

func runClipboardCopy(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	return clipboardStore(sh, "copy", args, state, sh.clipboard.Copy)
}

func runClipboardCut(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	return clipboardStore(sh, "cut", args, state, sh.clipboard.Cut)
}

func clipboardStore(sh *Shell, cmd string, args []string, state State, op func(vfs.Path) vfs.Result) (Result, error) {
	if len(args) == 0 {
		return missingOperand(cmd), nil
	}
	p, it := sh.resolveChild(state.CurrentDirectory, args[0])
	if it == nil {
		return fail("%s: %s: No such file or directory", cmd, args[0]), nil
	}
	if res := op(p); !res.Success {
		return fail("%s: %s: %s", cmd, args[0], res.Message()), nil
	}
	return ok(""), nil
}

func runPaste(_ context.Context, sh *Shell, _ []string, state State) (Result, error) {
	if res := sh.clipboard.Paste(state.CurrentDirectory); !res.Success {
		return fail("paste: %s", res.Message()), nil
	}
	return ok(""), nil
}

func runUndo(_ context.Context, sh *Shell, _ []string, _ State) (Result, error) {
	ops := sh.store.Operations()
	res := sh.store.UndoLastOperation()
	if !res.Success {
		return fail("undo: %s", res.Message()), nil
	}
	if len(ops) == 0 {
		return ok("Undid last operation"), nil
	}
	return ok(fmt.Sprintf("Undid %s", ops[len(ops)-1].Type)), nil
}
