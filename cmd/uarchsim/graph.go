// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"github.com/bradleyjkemp/memviz"
	"github.com/spf13/cobra"
)

// node is one enrolled Scheduleable, named and labelled, with enough detail
// for memviz to render a useful graph without exposing the Scheduleable
// itself.
type node struct {
	ID    uint64
	Label string
	Phase string
}

// precedenceGraph is what gets handed to memviz: the enrolled nodes and the
// declared (before, after) precedence edges between their IDs.
type precedenceGraph struct {
	Nodes []node
	Edges [][2]uint64
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Dump the demo pipeline's precedence graph as Graphviz dot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, _, err := buildDemo(false)
			if err != nil {
				return err
			}

			g := precedenceGraph{Edges: sched.Edges()}
			for _, sc := range sched.Registry() {
				g.Nodes = append(g.Nodes, node{ID: sc.ID(), Label: sc.Label(), Phase: sc.Phase().String()})
			}

			memviz.Map(cmd.OutOrStdout(), &g)
			return nil
		},
	}
}
