package btree

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// one color per level, cycled for deeper trees
var levelColors = []*color.Color{
	color.New(color.FgHiCyan, color.Bold),
	color.New(color.FgHiGreen),
	color.New(color.FgHiYellow),
	color.New(color.FgHiMagenta),
	color.New(color.FgHiBlue),
}

var emptyColor = color.New(color.FgRed)

const emptyTree = "Empty B-Tree!"

/*
Visualizer renders a tree level by level, one line per level.
Every node is printed as |k1 k2 ... kn| and nodes on the same level are separated by a tab.
*/
type Visualizer struct {
	Tree *Btree
}

func (v *Visualizer) Visualize() string {
	levels, err := v.Tree.Traverse()
	if err != nil {
		return emptyColor.Sprint(emptyTree)
	}

	var sb strings.Builder
	for depth, level := range levels {
		c := levelColors[depth%len(levelColors)]
		nodes := make([]string, len(level))
		for i, keys := range level {
			nodes[i] = c.Sprint(formatNode(keys))
		}
		sb.WriteString(strings.Join(nodes, "\t"))
		if depth < len(levels)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func formatNode(keys []int) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return "|" + strings.Join(parts, " ") + "|"
}
