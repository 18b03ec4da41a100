package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eliaswendt/mcfp-optimizer/internal/itinerary"
	"github.com/eliaswendt/mcfp-optimizer/internal/models"
	"github.com/eliaswendt/mcfp-optimizer/internal/pathfile"
	"github.com/eliaswendt/mcfp-optimizer/internal/repository"
)

const usageMessage = "Please specify the group number and the input csv file with the path of the groups."

const notFoundMessage = "Group id not found!"

// exitError carries the message and status print-path terminates with
type exitError struct {
	Code    int
	Message string
}

func (e *exitError) Error() string {
	return e.Message
}

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run prints the travel plan of one group. stdout only receives the plan.
func run(stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("print-path", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "Output format: text, json or gtfsrt")
	fromSQLite := fs.Bool("sqlite", false, "Read <file> as a SQLite database written by import-paths")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: print-path [-format text|json|gtfsrt] [-sqlite] <group_id> <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(positionalIDs(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &exitError{Code: 2, Message: err.Error()}
	}

	if fs.NArg() < 2 {
		return &exitError{Code: 1, Message: usageMessage}
	}
	groupID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return &exitError{Code: 1, Message: fmt.Sprintf("group id must be an integer, got %q", fs.Arg(0))}
	}
	filePath := fs.Arg(1)

	switch *format {
	case "text", "json", "gtfsrt":
	default:
		return &exitError{Code: 2, Message: fmt.Sprintf("unsupported format %q", *format)}
	}

	var row *models.GroupRow
	if *fromSQLite {
		row, err = lookupSQLite(filePath, groupID)
	} else {
		row, err = lookupFile(filePath, groupID)
	}
	if err != nil {
		if errors.Is(err, pathfile.ErrNotFound) || errors.Is(err, repository.ErrGroupNotFound) {
			return &exitError{Code: 1, Message: notFoundMessage}
		}
		return err
	}

	it, err := itinerary.Decode(row.Path)
	if err != nil {
		return fmt.Errorf("group %d: %w", groupID, err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models.NewGroupPath(*row, it))
	case "gtfsrt":
		data, err := itinerary.MarshalFeed(groupID, it, time.Now())
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	default:
		return it.Write(stdout)
	}
}

// positionalIDs ends flag parsing at the first integer argument, so a
// negative group id such as -1 is not taken for a flag
func positionalIDs(args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return args
		case arg == "-format" || arg == "--format":
			i++
			continue
		}
		if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		}
		if !strings.HasPrefix(arg, "-") {
			return args
		}
	}
	return args
}

func lookupFile(filePath string, groupID int64) (*models.GroupRow, error) {
	table, err := pathfile.Load(filePath)
	if err != nil {
		return nil, err
	}
	row, err := table.Lookup(groupID)
	if err != nil {
		return nil, err
	}
	return &models.GroupRow{GroupID: row.GroupID, Path: row.Path, Attributes: row.Attributes}, nil
}

func lookupSQLite(dbPath string, groupID int64) (*models.GroupRow, error) {
	// sql.Open would silently create a missing database file
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open path store: %w", err)
	}

	sqliteDB, err := repository.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer sqliteDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return repository.NewSQLiteGroupRepository(sqliteDB.GetDB()).GetGroupPath(ctx, groupID)
}
