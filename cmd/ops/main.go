package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/ops"
	"github.com/dexhavrelock-sketch/oil-management/internal/save"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmds := map[string]func([]string) error{
		"backup":  cmdBackup,
		"restore": cmdRestore,
		"drill":   cmdDrill,
		"export":  cmdExport,
		"import":  cmdImport,
	}
	run, ok := cmds[os.Args[1]]
	if !ok {
		printUsage()
		os.Exit(2)
	}
	if err := run(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "oil-"+ts+".tar.gz")
	}

	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.RestoreDataDir(*archive, *target)
}

// drill proves backups are restorable: archive, unpack elsewhere, compare
// content digests, then decode the restored save slot end to end.
func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "oil-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "oil-drill-restore-"+ts)

	if err := ops.BackupDataDir(*dataDir, archive); err != nil {
		return err
	}
	if err := ops.RestoreDataDir(archive, restoreDir); err != nil {
		return err
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	rep, err := ops.VerifySaveData(context.Background(), restoreDir, config.FromEnv())
	if err != nil {
		return err
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	if rep.HasSave {
		fmt.Printf("save: score=%d savings=%d highScore=%d\n", rep.Score, rep.Savings, rep.HighScore)
	} else {
		fmt.Println("save: empty slot")
	}
	return nil
}

// export prints the save code for a data directory without a running
// server, for support and migration work.
func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.FromEnv()
	store, err := storage.OpenSQLite(filepath.Join(*dataDir, ops.DefaultDatabaseName))
	if err != nil {
		return err
	}
	defer store.Close()

	gw := save.NewGateway(store, cfg, nil)
	code, err := gw.Export(gw.Load(context.Background()))
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

// import validates a save code and writes it into a data directory's save
// slot. The code comes on stdin so it never lands in shell history.
func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	cfg := config.FromEnv()
	store, err := storage.OpenSQLite(filepath.Join(*dataDir, ops.DefaultDatabaseName))
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := save.NewGateway(store, cfg, nil).Import(context.Background(), string(raw))
	if err != nil {
		return err
	}
	fmt.Printf("imported: score=%d savings=%d\n", rec.Score, rec.Savings)
	return nil
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  oil-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Println("  oil-ops restore --archive backups/backup.tar.gz --target-dir data-restored")
	fmt.Println("  oil-ops drill   --data-dir data --work-dir /tmp")
	fmt.Println("  oil-ops export  --data-dir data")
	fmt.Println("  oil-ops import  --data-dir data < save-code.txt")
}
