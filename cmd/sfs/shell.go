package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/fs"
)

func run(ctx *cli.Context) error {
	if ctx.Args().Len() != 2 {
		return cli.Exit(fmt.Sprintf("Usage: %s <diskfile> <nblocks>", ctx.App.Name), 1)
	}

	path := ctx.Args().Get(0)
	blocks, err := strconv.ParseUint(ctx.Args().Get(1), 10, 32)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid block count %q", ctx.Args().Get(1)), 1)
	}

	device, err := block.Open(path, uint32(blocks))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var fileSystem fs.FileSystem
	runREPL(os.Stdin, device, &fileSystem)

	fs.Unmount(&fileSystem)
	if err := device.Close(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// runREPL implements the shell loop of the original sfssh.c: read a line,
// split it into a command and up to two arguments, and dispatch.
func runREPL(in io.Reader, device *block.Device, fileSystem *fs.FileSystem) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(os.Stderr, "sfs> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "debug":
			fs.Debug(device)
		case "format":
			if fs.Format(device) {
				fmt.Println("disk formatted.")
			} else {
				fmt.Println("format failed!")
			}
		case "mount":
			if fs.Mount(fileSystem, device) {
				fmt.Println("disk mounted.")
			} else {
				fmt.Println("mount failed!")
			}
		case "create":
			doCreate(fileSystem)
		case "remove":
			doRemove(fileSystem, args)
		case "stat":
			doStat(fileSystem, args)
		case "cat":
			doCat(fileSystem, args)
		case "copyout":
			doCopyout(fileSystem, args)
		case "copyin":
			doCopyin(fileSystem, args)
		case "help":
			printHelp()
		case "exit", "quit":
			return
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
			fmt.Println("Type 'help' for a list of commands.")
		}
	}
}

func doCreate(fileSystem *fs.FileSystem) {
	inodeNumber := fs.Create(fileSystem)
	if inodeNumber >= 0 {
		fmt.Printf("created inode %d.\n", inodeNumber)
	} else {
		fmt.Println("create failed!")
	}
}

func doRemove(fileSystem *fs.FileSystem, args []string) {
	inodeNumber, ok := parseInodeArg(args, "remove <inode>")
	if !ok {
		return
	}
	if fs.Remove(fileSystem, inodeNumber) {
		fmt.Printf("removed inode %d.\n", inodeNumber)
	} else {
		fmt.Println("remove failed!")
	}
}

func doStat(fileSystem *fs.FileSystem, args []string) {
	inodeNumber, ok := parseInodeArg(args, "stat <inode>")
	if !ok {
		return
	}
	size := fs.Stat(fileSystem, inodeNumber)
	if size >= 0 {
		fmt.Printf("inode %d has size %d bytes.\n", inodeNumber, size)
	} else {
		fmt.Println("stat failed!")
	}
}

func doCat(fileSystem *fs.FileSystem, args []string) {
	inodeNumber, ok := parseInodeArg(args, "cat <inode>")
	if !ok {
		return
	}
	if !streamOut(fileSystem, inodeNumber, os.Stdout) {
		fmt.Println("cat failed!")
	}
}

func doCopyout(fileSystem *fs.FileSystem, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: copyout <inode> <file>")
		return
	}
	inodeNumber, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Println("Usage: copyout <inode> <file>")
		return
	}

	out, err := os.Create(args[1])
	if err != nil {
		fmt.Printf("Unable to open %s: %s\n", args[1], err)
		fmt.Println("copyout failed!")
		return
	}
	defer out.Close()

	if !streamOut(fileSystem, inodeNumber, out) {
		fmt.Println("copyout failed!")
	}
}

func doCopyin(fileSystem *fs.FileSystem, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: copyin <file> <inode>")
		return
	}
	inodeNumber, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Println("Usage: copyin <file> <inode>")
		return
	}

	in, err := os.Open(args[0])
	if err != nil {
		fmt.Printf("Unable to open %s: %s\n", args[0], err)
		fmt.Println("copyin failed!")
		return
	}
	defer in.Close()

	const chunkSize = 4 * 1024
	buffer := make([]byte, chunkSize)
	var offset uint64
	for {
		n, readErr := in.Read(buffer)
		if n <= 0 {
			break
		}
		written := fs.Write(fileSystem, inodeNumber, buffer[:n], uint64(n), offset)
		if written < 0 {
			fmt.Printf("fs_write returned invalid result %d\n", written)
			break
		}
		offset += uint64(written)
		if written != int64(n) {
			fmt.Printf("fs_write only wrote %d bytes, not %d bytes\n", written, n)
			break
		}
		if readErr != nil {
			break
		}
	}
	fmt.Printf("%d bytes copied\n", offset)
}

// streamOut copies inodeNumber's contents to out in fixed-size chunks,
// stopping at the first non-positive Read result, matching the original
// shell's copyout/cat utility.
func streamOut(fileSystem *fs.FileSystem, inodeNumber uint64, out io.Writer) bool {
	const chunkSize = 4 * 1024
	buffer := make([]byte, chunkSize)
	var offset uint64
	for {
		result := fs.Read(fileSystem, inodeNumber, buffer, uint64(len(buffer)), offset)
		if result <= 0 {
			break
		}
		out.Write(buffer[:result])
		offset += uint64(result)
	}
	fmt.Printf("%d bytes copied\n", offset)
	return true
}

func parseInodeArg(args []string, usage string) (uint64, bool) {
	if len(args) != 1 {
		fmt.Printf("Usage: %s\n", usage)
		return 0, false
	}
	inodeNumber, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Usage: %s\n", usage)
		return 0, false
	}
	return inodeNumber, true
}

func printHelp() {
	fmt.Println("Commands are:")
	fmt.Println("    format")
	fmt.Println("    mount")
	fmt.Println("    debug")
	fmt.Println("    create")
	fmt.Println("    remove  <inode>")
	fmt.Println("    cat     <inode>")
	fmt.Println("    stat    <inode>")
	fmt.Println("    copyin  <file> <inode>")
	fmt.Println("    copyout <inode> <file>")
	fmt.Println("    help")
	fmt.Println("    quit")
	fmt.Println("    exit")
}
