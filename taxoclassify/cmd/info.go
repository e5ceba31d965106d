// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/stable"
	"github.com/shenwei356/taxoclass"
	"github.com/shenwei356/taxoclass/cht"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:     "info",
	Aliases: []string{"stats"},
	Short:   "information of a compact hash table and taxonomy",
	Long: `information of a compact hash table and taxonomy

Prints capacity, load factor, key/value bit widths and node count
without classifying anything.
`,
	Run: func(cmd *cobra.Command, args []string) {
		hashFile := expandPath(getFlagString(cmd, "hash"))
		taxonomyFile := expandPath(getFlagString(cmd, "taxonomy"))

		table, err := cht.Load(hashFile)
		checkError(err)
		defer table.Close()

		tax, err := taxoclass.LoadTaxonomy(taxonomyFile)
		checkError(err)

		style := &stable.TableStyle{
			Name:      "plain",
			HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			Padding:   "",
		}

		columns := []stable.Column{
			{Header: "item"},
			{Header: "value", Align: stable.AlignRight},
		}
		tbl := stable.New()
		tbl.HeaderWithFormat(columns)

		occupied := table.OccupiedCells()
		loadFactor := float64(occupied) / float64(table.Capacity)

		tbl.AddRow([]interface{}{"hash file", hashFile})
		tbl.AddRow([]interface{}{"capacity", humanize.Comma(int64(table.Capacity))})
		tbl.AddRow([]interface{}{"occupied cells", humanize.Comma(int64(occupied))})
		tbl.AddRow([]interface{}{"load factor", fmt.Sprintf("%.4f", loadFactor)})
		tbl.AddRow([]interface{}{"key bits", table.KeyBits})
		tbl.AddRow([]interface{}{"value bits", table.ValueBits})
		tbl.AddRow([]interface{}{"taxonomy file", taxonomyFile})
		tbl.AddRow([]interface{}{"nodes", humanize.Comma(int64(len(tax.Nodes)))})
		tbl.AddRow([]interface{}{"root id", rootID(tax)})

		fmt.Print(string(tbl.Render(style)))
	},
}

// rootID reports the taxonomy's root node id, which this package's
// loader always assigns to node 1 (node 0 is reserved for
// "unclassified").
func rootID(tax *taxoclass.Taxonomy) uint32 {
	if len(tax.Nodes) > 1 {
		return 1
	}
	return 0
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("hash", "H", "", "compact hash table file")
	infoCmd.Flags().StringP("taxonomy", "t", "", "taxonomy file")

	infoCmd.MarkFlagRequired("hash")
	infoCmd.MarkFlagRequired("taxonomy")
}
