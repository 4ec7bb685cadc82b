// textool is a CLI utility for inspecting and converting model textures.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/Faultbox/marionette/internal/engine/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert", "c":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`textool - texture inspection and conversion

Usage:
  textool <command> [options]

Commands:
  info <file>...                     Show format and dimensions
  convert [options] <file>...        Convert files to another format

Convert options:
  -to <format>      Output format: png, tga, bmp, tiff, jpeg (default png)
  -o <dir>          Output directory (default: next to the input)
  -colorkey         Make magenta (255,0,255) pixels transparent
  -tolerance <n>    Color key tolerance per channel (default 4)

Examples:
  textool info body.tga face.bmp
  textool convert -to png -colorkey -o out sprites/*.bmp`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: textool info <file>...")
		os.Exit(1)
	}

	failed := false
	for _, path := range args {
		cfg, format, err := texture.DecodeConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%-40s %-5s %5dx%-5d %8.1f KB\n", path, format, cfg.Width, cfg.Height, float64(st.Size())/1024)
	}
	if failed {
		os.Exit(1)
	}
}

// convertOptions controls a single conversion.
type convertOptions struct {
	format    texture.Format
	outDir    string
	colorKey  bool
	tolerance uint8
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	to := fs.String("to", "png", "Output format")
	outDir := fs.String("o", "", "Output directory")
	colorKey := fs.Bool("colorkey", false, "Make magenta pixels transparent")
	tolerance := fs.Uint("tolerance", 4, "Color key tolerance")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: textool convert [options] <file>...")
		os.Exit(1)
	}

	format, err := texture.FormatFromPath("x." + strings.ToLower(*to))
	if err != nil || !format.CanEncode() {
		fmt.Fprintf(os.Stderr, "Error: cannot write %s files\n", *to)
		os.Exit(1)
	}
	if *tolerance > 255 {
		fmt.Fprintln(os.Stderr, "Error: tolerance must be 0-255")
		os.Exit(1)
	}

	opts := convertOptions{
		format:    format,
		outDir:    *outDir,
		colorKey:  *colorKey,
		tolerance: uint8(*tolerance),
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	files := fs.Args()
	bar := progressbar.Default(int64(len(files)), "converting")

	var errs []string
	for _, path := range files {
		if _, err := convert(path, opts); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
		}
		bar.Add(1)
	}
	bar.Close()

	fmt.Printf("\nConverted %d of %d files\n", len(files)-len(errs), len(files))
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, "  "+e)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
}

// convert writes one file and returns the output path.
func convert(path string, opts convertOptions) (string, error) {
	img, _, err := texture.Load(path)
	if err != nil {
		return "", err
	}
	if opts.colorKey {
		img = texture.ApplyColorKey(img, texture.Magenta, opts.tolerance)
	}

	dir := opts.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(dir, base+"."+string(opts.format))
	if out == path {
		return "", fmt.Errorf("output would overwrite input")
	}

	if err := texture.Save(out, img); err != nil {
		return "", err
	}
	return out, nil
}
