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
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	gzip "github.com/klauspost/pgzip"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/taxoclass"
	"github.com/shenwei356/taxoclass/cht"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "classify FASTA/FASTQ reads against a minimizer index",
	Long: `classify FASTA/FASTQ reads against a minimizer index

Classifies one or more input files against a prebuilt compact hash
table and taxonomy, writing one tab-separated line per read (or read
pair) to stdout or the file given by -O.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		hashFile := expandPath(getFlagString(cmd, "hash"))
		taxonomyFile := expandPath(getFlagString(cmd, "taxonomy"))
		optionsFile := expandPath(getFlagString(cmd, "options"))

		confidenceThreshold := getFlagFloat64(cmd, "confidence-threshold")
		minimumHitGroups := getFlagInt(cmd, "minimum-hit-groups")
		minimumQuality := getFlagInt(cmd, "minimum-quality-score")
		paired := getFlagBool(cmd, "paired-end")
		singleFilePairs := getFlagBool(cmd, "single-file-pairs")
		printScientificName := getFlagBool(cmd, "print-scientific-name")
		outFile := getFlagString(cmd, "out")

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one input file is required"))
		}
		if paired && !singleFilePairs && len(args)%2 != 0 {
			checkError(taxoclass.ErrConfigMismatch)
		}

		indexOptions, err := taxoclass.LoadOptions(optionsFile)
		checkError(err)
		meros, err := indexOptions.Meros()
		checkError(err)

		table, err := cht.Load(hashFile)
		checkError(err)
		defer table.Close()

		tax, err := taxoclass.LoadTaxonomy(taxonomyFile)
		checkError(err)
		tax.CacheLCA()

		out, closeOut := openClassifyOutput(outFile)
		defer closeOut()

		counters := make(map[uint32]*taxoclass.TaxonCounters)
		var countersMu sync.Mutex

		type job struct {
			readID string
			mate1  []byte
			mate2  []byte
		}

		jobs := make(chan job, opt.NumCPUs*4)
		lines := make(chan string, opt.NumCPUs*4)

		var workers sync.WaitGroup
		for i := 0; i < opt.NumCPUs; i++ {
			workers.Add(1)
			go func() {
				defer workers.Done()
				scanner := taxoclass.NewScanner(meros)
				localCounters := make(map[uint32]*taxoclass.TaxonCounters)

				for j := range jobs {
					var line taxoclass.ClassifiedLine
					if j.mate2 != nil {
						line = taxoclass.ClassifyPair(scanner, table, tax, localCounters, confidenceThreshold, minimumHitGroups, printScientificName, j.readID, j.mate1, j.mate2)
					} else {
						line = taxoclass.ClassifyRead(scanner, table, tax, localCounters, confidenceThreshold, minimumHitGroups, printScientificName, j.readID, j.mate1)
					}
					lines <- line.String()
				}

				countersMu.Lock()
				for taxon, c := range localCounters {
					dst, ok := counters[taxon]
					if !ok {
						dst = &taxoclass.TaxonCounters{}
						counters[taxon] = dst
					}
					dst.ReadCount += c.ReadCount
				}
				countersMu.Unlock()
			}()
		}

		var writer sync.WaitGroup
		writer.Add(1)
		go func() {
			defer writer.Done()
			for line := range lines {
				fmt.Fprintln(out, line)
			}
		}()

		if minimumQuality > 0 && opt.Verbose {
			log.Infof("masking bases with quality below %d", minimumQuality)
		}

		var nRecords int
		if paired && singleFilePairs {
			for _, file := range args {
				reader, err := fastx.NewDefaultReader(file)
				checkError(err)
				for {
					r1, err := reader.Read()
					if err == io.EOF {
						break
					}
					checkError(err)
					r2, err := reader.Read()
					if err == io.EOF {
						checkError(fmt.Errorf("%s: odd number of records under -S/--single-file-pairs", file))
					}
					checkError(err)

					jobs <- job{
						readID: readID(r1),
						mate1:  maskLowQuality(r1, minimumQuality),
						mate2:  maskLowQuality(r2, minimumQuality),
					}
					nRecords++
				}
			}
		} else if paired {
			for i := 0; i+1 < len(args); i += 2 {
				r1, err := fastx.NewDefaultReader(args[i])
				checkError(err)
				r2, err := fastx.NewDefaultReader(args[i+1])
				checkError(err)
				for {
					rec1, err1 := r1.Read()
					rec2, err2 := r2.Read()
					if err1 == io.EOF || err2 == io.EOF {
						break
					}
					checkError(err1)
					checkError(err2)

					jobs <- job{
						readID: readID(rec1),
						mate1:  maskLowQuality(rec1, minimumQuality),
						mate2:  maskLowQuality(rec2, minimumQuality),
					}
					nRecords++
				}
			}
		} else {
			for _, file := range args {
				reader, err := fastx.NewDefaultReader(file)
				checkError(err)
				for {
					rec, err := reader.Read()
					if err == io.EOF {
						break
					}
					checkError(err)

					jobs <- job{
						readID: readID(rec),
						mate1:  maskLowQuality(rec, minimumQuality),
					}
					nRecords++
				}
			}
		}
		close(jobs)
		workers.Wait()
		close(lines)
		writer.Wait()

		if opt.Verbose {
			log.Infof("classified %d read(s)/pair(s)", nRecords)
		}
	},
}

// readID mirrors original_source/kr2r/src/bin/classify.rs's get_record_id:
// the FASTA/FASTQ header up to the first space.
func readID(r *fastx.Record) string {
	name := r.Name
	for i, b := range name {
		if b == ' ' {
			return string(name[:i])
		}
	}
	return string(name)
}

// maskLowQuality rewrites FASTQ bases below minimumQuality to 'N',
// ported from original_source/kr2r/src/bin/classify.rs's call to
// mask_low_quality_bases. A minimumQuality of 0
// (the default) disables masking. FASTA records have no quality string
// and are returned unmasked.
func maskLowQuality(r *fastx.Record, minimumQuality int) []byte {
	seq := r.Seq.Seq
	qual := r.Seq.Qual
	if minimumQuality <= 0 || len(qual) != len(seq) {
		return seq
	}

	masked := make([]byte, len(seq))
	copy(masked, seq)
	for i, q := range qual {
		if int(q)-33 < minimumQuality {
			masked[i] = 'N'
		}
	}
	return masked
}

// openClassifyOutput opens -O's target, gzip-compressing it with
// klauspost/pgzip when the name ends in .gz. "-" and "" both mean stdout.
func openClassifyOutput(file string) (io.Writer, func()) {
	if file == "" || file == "-" {
		w := bufio.NewWriterSize(os.Stdout, os.Getpagesize())
		return w, func() { w.Flush() }
	}

	f, err := os.Create(file)
	checkError(err)

	if len(file) > 3 && file[len(file)-3:] == ".gz" {
		gw := gzip.NewWriter(f)
		w := bufio.NewWriterSize(gw, os.Getpagesize())
		return w, func() { w.Flush(); gw.Close(); f.Close() }
	}

	w := bufio.NewWriterSize(f, os.Getpagesize())
	return w, func() { w.Flush(); f.Close() }
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringP("hash", "H", "", "compact hash table file")
	classifyCmd.Flags().StringP("taxonomy", "t", "", "taxonomy file")
	classifyCmd.Flags().StringP("options", "o", "", "options file")
	classifyCmd.Flags().Float64P("confidence-threshold", "T", 0, "confidence score threshold in [0,1]")
	classifyCmd.Flags().IntP("minimum-hit-groups", "g", 2, "minimum number of hit groups needed for a call")
	classifyCmd.Flags().BoolP("paired-end", "P", false, "enable paired-end processing")
	classifyCmd.Flags().BoolP("single-file-pairs", "S", false, "process mate pairs interleaved in the same file")
	classifyCmd.Flags().BoolP("print-scientific-name", "n", false, "print scientific name instead of taxid")
	classifyCmd.Flags().IntP("minimum-quality-score", "Q", 0, "minimum FASTQ Phred quality score; lower bases are masked to N")
	classifyCmd.Flags().StringP("out", "O", "", "output file (default: stdout); .gz suffix gzip-compresses it")

	classifyCmd.MarkFlagRequired("hash")
	classifyCmd.MarkFlagRequired("taxonomy")
	classifyCmd.MarkFlagRequired("options")
}
