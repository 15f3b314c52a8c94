package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"btree/btree"

	"github.com/ansel1/merry"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	promptColor = color.New(color.FgHiWhite, color.Bold)
	errorColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
)

type Cli struct {
	scanner    *bufio.Scanner
	tree       *btree.Btree
	visualizer *btree.Visualizer
	out        io.Writer
	log        logrus.FieldLogger
}

func NewCli(s *bufio.Scanner, t *btree.Btree, out io.Writer, log logrus.FieldLogger) *Cli {
	v := &btree.Visualizer{
		Tree: t,
	}
	return &Cli{scanner: s, tree: t, visualizer: v, out: out, log: log}
}

// Start reads commands until EXIT or end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.processInput(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
	if err := c.scanner.Err(); err != nil {
		c.log.WithError(err).Warn("reading input")
	}
}

func (c *Cli) printHelp() {
	fmt.Fprintf(c.out, `
B-Tree CLI (order %d)

Available Commands:
  INSERT <key> [rec] Insert a key (and optional record id) into the B-Tree, alias SET
  DEL <key>          Remove a key from the B-Tree
  GET <key>          Locate a key in the B-Tree
  PRINT              Print the B-Tree level by level
  INIT               Reset to an empty B-Tree
  DESTROY            Release every node of the B-Tree
  CHECK              Verify the B-Tree invariants
  DEMO               Insert 1..15, then delete 9 and 1
  HELP               Show this message
  EXIT               Terminate this session
`, c.tree.Order())
}

func (c *Cli) printPrompt() {
	promptColor.Fprint(c.out, "> ")
}

func (c *Cli) println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// processInput runs one command line and reports whether the session should continue.
func (c *Cli) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}
	command := strings.ToLower(fields[0])
	switch command {
	default:
		errorColor.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "insert", "set":
		c.processInsertCommand(fields[1:])
	case "del":
		c.processDeleteCommand(fields[1:])
	case "get":
		c.processGetCommand(fields[1:])
	case "print":
		c.printTree()
	case "init":
		c.tree.Init()
		okColor.Fprintln(c.out, "Init B-Tree successfully.")
	case "destroy":
		c.tree.Destroy()
		okColor.Fprintln(c.out, "Destroy B-Tree successfully.")
	case "check":
		c.processCheckCommand()
	case "demo":
		c.processDemoCommand()
	case "help":
		c.printHelp()
	case "exit":
		return false
	}
	return true
}

func (c *Cli) parseKey(arg string) (int, bool) {
	key, err := strconv.Atoi(arg)
	if err != nil {
		c.log.WithField("arg", arg).Warn("key is not an integer")
		errorColor.Fprintf(c.out, "Invalid key \"%s\"\n", arg)
		return 0, false
	}
	return key, true
}

func (c *Cli) processInsertCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		c.println("Usage: INSERT <key> [rec]")
		return
	}
	key, ok := c.parseKey(args[0])
	if !ok {
		return
	}
	var rec int64
	if len(args) == 2 {
		var err error
		if rec, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			errorColor.Fprintf(c.out, "Invalid record id \"%s\"\n", args[1])
			return
		}
	}

	anchor, pos, found := c.tree.Search(key)
	if found {
		c.println("Key already exists.")
		return
	}
	c.tree.InsertRecord(anchor, pos, key, rec)
	c.println(c.tree)
	c.println(c.visualizer.Visualize())
}

func (c *Cli) processDeleteCommand(args []string) {
	if len(args) != 1 {
		c.println("Usage: DEL <key>")
		return
	}
	key, ok := c.parseKey(args[0])
	if !ok {
		return
	}

	if err := c.tree.Delete(key); err != nil {
		if merry.Is(err, btree.ErrNotFound) {
			c.println("Key not found.")
			return
		}
		errorColor.Fprintln(c.out, err)
		return
	}
	c.println(c.tree)
	c.println(c.visualizer.Visualize())
}

func (c *Cli) processGetCommand(args []string) {
	if len(args) != 1 {
		c.println("Usage: GET <key>")
		return
	}
	key, ok := c.parseKey(args[0])
	if !ok {
		return
	}

	n, pos, found := c.tree.Search(key)
	if !found {
		c.println("Key not found.")
		return
	}
	rec, _ := c.tree.Find(key)
	fmt.Fprintf(c.out, "key %d at index %d of node %v, record %d\n", key, pos, n.Keys(), rec)
}

func (c *Cli) printTree() {
	c.println(c.visualizer.Visualize())
}

func (c *Cli) processCheckCommand() {
	if err := c.tree.Verify(); err != nil {
		errorColor.Fprintln(c.out, err)
		return
	}
	okColor.Fprintln(c.out, "B-Tree is valid.")
}

// processDemoCommand replays a fixed script: ascending inserts, two deletions, then destroy.
func (c *Cli) processDemoCommand() {
	c.tree.Destroy()
	fmt.Fprintf(c.out, "Create B-Tree (order %d):\n", c.tree.Order())
	for k := 1; k <= 15; k++ {
		anchor, pos, found := c.tree.Search(k)
		if !found {
			c.tree.Insert(anchor, pos, k)
		}
		fmt.Fprintf(c.out, "step %d, insert %d:\n", k, k)
		c.printTree()
	}

	for _, k := range []int{9, 1} {
		if err := c.tree.Delete(k); err != nil {
			errorColor.Fprintln(c.out, err)
		}
		fmt.Fprintf(c.out, "delete %d:\n", k)
		c.printTree()
	}

	c.tree.Destroy()
	c.println("destroy:")
	c.printTree()
}
