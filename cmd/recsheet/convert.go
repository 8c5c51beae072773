// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recsheet/internal/convert"
	"github.com/pdiddy/recsheet/internal/preview"
)

var convertCmd = &cobra.Command{
	Use:   "convert [markdown files...]",
	Short: "Convert Markdown recording-sheet tables to CSV",
	Long: `Convert reads a Markdown pipe table and writes it as CSV, keeping the
recording-sheet columns №, 楽曲名 (written as 曲名), 歌手名, DK№, OrgTime and the
first column whose name contains 備考 (written as RecSheet備考).

With no arguments, or with "-", the table is read from standard input.
Each document writes <out-dir>/<name>/<encoding>/converted_data.csv for every
requested encoding.

使い方:
  1. マークダウン形式のテーブルを用意します。
  2. recsheet convert table.md を実行します。
  3. 出力された CSV ファイルを表計算ソフトで開きます。

Encodings:
  utf-8-sig  UTF-8 with byte order mark. Recommended; opens correctly in Excel.
  shift_jis  Shift-JIS for older Japanese Excel. Characters outside Shift-JIS
             fall back to cp932, then to utf-8-sig; the label shows which
             encoding the file is actually in.
  cp932      Windows-31J (Shift-JIS with NEC and IBM extensions).`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := convertOptions(cfg.Convert)
	if err != nil {
		return err
	}

	showPreview, _ := cmd.Flags().GetBool("preview")
	previewRows, _ := cmd.Flags().GetInt("preview-rows")
	showLinks, _ := cmd.Flags().GetBool("links")

	log := cmd.ErrOrStderr()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		args = []string{"-"}
	}

	var summary convert.BatchResult
	for _, path := range args {
		res, err := convertOne(path, cmd.InOrStdin(), opts, log)
		summary.Add(res, err)

		if showPreview && res.Table != nil {
			fmt.Fprint(log, preview.Render(*res.Table, previewRows))
		}
		if showLinks {
			for _, o := range res.Outputs {
				fmt.Fprintln(out, o.DownloadLink())
			}
		}
	}

	if len(args) > 1 {
		summary.Report(log)
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d document(s) not fully converted", summary.Partial+summary.Failed, summary.Total())
	}
	return nil
}

// convertOne converts a file, or standard input when path is "-".
func convertOne(path string, stdin io.Reader, opts convert.Options, log io.Writer) (convert.Result, error) {
	if path != "-" {
		return convert.ConvertFile(path, opts, log)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return convert.Result{}, fmt.Errorf("reading standard input: %w", err)
	}
	return convert.ConvertDocument("stdin", string(data), opts, log)
}

func init() {
	convertCmd.Flags().StringSlice("encodings", nil, "output encodings in order: utf-8-sig, shift_jis, cp932 (default utf-8-sig,shift_jis)")
	convertCmd.Flags().String("out-dir", defaultConvertOutDir, "base directory for CSV output")
	convertCmd.Flags().String("parser", "lenient", "table parser: lenient or gfm")
	convertCmd.Flags().String("profile", "", "YAML column profile (default: built-in recording sheet)")
	convertCmd.Flags().Bool("crlf", false, "terminate CSV rows with CRLF")
	convertCmd.Flags().Bool("preview", false, "print the converted table to stderr")
	convertCmd.Flags().Int("preview-rows", 20, "maximum rows shown by --preview (0 = all)")
	convertCmd.Flags().Bool("links", false, "print an HTML download link with an embedded data URI per output")

	for key, flag := range map[string]string{
		"convert.encodings": "encodings",
		"convert.out_dir":   "out-dir",
		"convert.parser":    "parser",
		"convert.profile":   "profile",
		"convert.crlf":      "crlf",
	} {
		_ = viper.BindPFlag(key, convertCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}
