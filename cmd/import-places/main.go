package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/swelljoe/wthrbar/internal/config"
	"github.com/swelljoe/wthrbar/internal/places"
)

const dataDir = "data"

func main() {
	envFile := flag.String("env", ".env", "optional file with WTHRBAR_* settings")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-env file] <file.tsv|file.zip|URL>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*envFile, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(envFile, source string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	path := source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if path, err = fetch(source); err != nil {
			return err
		}
	}

	database, err := places.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()

	n, err := importPath(database, path)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	fmt.Printf("Finished importing %d places into %s.\n", n, cfg.DBPath)
	return nil
}

// fetch downloads url into the data directory unless a copy is already there.
func fetch(url string) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	path := filepath.Join(dataDir, filepath.Base(url))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Downloading %s...\n", url)
		if err := downloadFile(url, path); err != nil {
			os.Remove(path)
			return "", err
		}
	} else {
		fmt.Printf("Using existing %s\n", path)
	}
	return path, nil
}

func importPath(db *places.DB, path string) (int, error) {
	if !strings.HasSuffix(path, ".zip") {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		return db.Import(f)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".tsv") || strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return 0, err
			}
			defer rc.Close()
			return db.Import(rc)
		}
	}
	return 0, fmt.Errorf("no tsv file found in %s", path)
}

func downloadFile(url, filepath string) error {
	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	_, err = io.Copy(out, resp.Body)
	return err
}
