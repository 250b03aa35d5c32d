// Command inspect dumps the engine's Badger keyspace as a table.
// It opens the database read-only and bypasses the lock guard so it
// can run next to a live server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"chat-store/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/chat-store/badger", "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (room:, user:, member:, msg:); empty scans everything")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	color.Bold.Printf("Keyspace dump of %s\n", *dbPath)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Entity", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(value []byte) error {
				kind, entity, detail := describe(key, value)
				table.Append([]string{key, kind, entity, detail})
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	table.Render()
	color.Green.Printf("%d entries\n", rows)
}

// describe decodes a value according to its key namespace. Unknown or
// undecodable entries are shown raw rather than aborting the dump.
func describe(key string, value []byte) (kind, entity, detail string) {
	switch {
	case strings.HasPrefix(key, "room:"):
		room, err := repositories.DecodeRoom(value)
		if err != nil {
			return "ROOM", "?", err.Error()
		}
		return "ROOM", fmt.Sprintf("%d", room.ID), room.Name
	case strings.HasPrefix(key, "user:"):
		user, err := repositories.DecodeUser(value)
		if err != nil {
			return "USER", "?", err.Error()
		}
		return "USER", user.ID, user.Handle
	case strings.HasPrefix(key, "member:"):
		membership, err := repositories.DecodeMembership(value)
		if err != nil {
			return "MEMBER", "?", err.Error()
		}
		return "MEMBER", membership.UserID, fmt.Sprintf("room %d since %s", membership.Room, membership.Since.Format("2006-01-02 15:04:05"))
	case strings.HasPrefix(key, "msg:"):
		message, err := repositories.DecodeMessage(value)
		if err != nil {
			return "MESSAGE", "?", err.Error()
		}
		detail := message.Content
		if detail == "" {
			detail = fmt.Sprintf("[image %s]", message.Image)
		}
		return "MESSAGE", message.ID.String(), detail
	case strings.HasPrefix(key, "msgcount:"):
		return "COUNT", key[len("msgcount:"):], string(value)
	default:
		return "RAW", "", fmt.Sprintf("%d bytes", len(value))
	}
}
