package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mabhi256/nettrace/internal/nettrace"
	"github.com/mabhi256/nettrace/internal/tracetui"
	"github.com/mabhi256/nettrace/utils"
	"github.com/spf13/cobra"
)

var traceDebugPath string

var traceCmd = &cobra.Command{
	Use:   "trace [nettrace-file]",
	Short: "Decode a .NET EventPipe trace file (.nettrace)",
	Long: `Decode a .nettrace file and print a summary of its contents:
- trace capture metadata (process id, capture time, pointer size, CPU count)
- total counts of events, distinct metadata schemas and distinct stack traces
Events are not broken down per schema, and symbols are not listed.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".nettrace"}, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		if ext := filepath.Ext(filename); ext != ".nettrace" {
			fmt.Printf("Warning: File extension '%s' is not '.nettrace', but proceeding anyway...\n", ext)
		}

		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("open %s: %w", filename, err)
		}
		defer f.Close()

		var opts []nettrace.Option
		if traceDebugPath != "" {
			debugFile, err := os.Create(traceDebugPath)
			if err != nil {
				return fmt.Errorf("create debug output %s: %w", traceDebugPath, err)
			}
			defer debugFile.Close()
			opts = append(opts, nettrace.WithDebugWriter(debugFile))
		}

		trace, err := tracetui.Run(f, opts...)
		if err != nil {
			return fmt.Errorf("decode %s: %w", filename, err)
		}

		fmt.Printf("Process %d captured %s (pointer size %d, %d CPUs)\n",
			trace.Metadata.ProcessID, trace.Metadata.Time().Format("2006-01-02 15:04:05"),
			trace.Metadata.PointerSize, trace.Metadata.NumberOfProcessors)
		fmt.Printf("%d events across %d distinct schemas, %d distinct stacks\n",
			len(trace.Events), len(trace.Metas), len(trace.Stacks))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringVar(&traceDebugPath, "debug-out", "", "write decode trace commentary to this file")
}
