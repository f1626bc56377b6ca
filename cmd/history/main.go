package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"salesroom/repositories"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	kind := flag.String("kind", "", "Event kind (deal, quota, sale, forecast, reset); empty lists all")
	limit := flag.Int("limit", 50, "Maximum number of events per kind")
	cursor := flag.String("cursor", "", "Resume after this key suffix")
	flag.Parse()

	kinds := repositories.Kinds
	if *kind != "" {
		k, err := repositories.ParseKind(*kind)
		if err != nil {
			log.Fatal(err)
		}
		kinds = []repositories.Kind{k}
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewEventRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)), limit)
	if err := dump(os.Stdout, repository, kinds, *cursor); err != nil {
		log.Fatal(err)
	}
}

func dump(out io.Writer, repository repositories.IEventRepository, kinds []repositories.Kind, cursor string) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"At", "Kind", "Action", "Entity ID", "Payload"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	var next []string
	for _, kind := range kinds {
		var from *string
		if cursor != "" {
			from = lo.ToPtr(cursor)
		}
		events, last, err := repository.List(kind, from)
		if err != nil {
			return fmt.Errorf("listing %s: %w", kind, err)
		}
		for _, e := range events {
			table.Append([]string{
				e.At.Format("2006-01-02 15:04:05"),
				string(e.Kind),
				e.Action,
				e.EntityID,
				string(e.Payload),
			})
		}
		if len(events) > 0 && last != nil {
			next = append(next, fmt.Sprintf("%s=%s", kind, *last))
		}
	}

	table.Render()
	if len(next) > 0 {
		fmt.Fprintf(out, "\nnext cursors: %s\n", strings.Join(next, " "))
	}
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
