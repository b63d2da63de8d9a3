// Package index persists the note graph of a workspace: one row per
// Markdown file plus the hyperlinks between them, with their positions in
// the source. It backs find-references and workspace symbols across files
// the editor never opened.
package index

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var ErrNotFound = errors.New("note does not exist in index")

// Note is one indexed Markdown file.
type Note struct {
	Path         string
	Title        string
	LastModified int64 // unix seconds of the indexed content
}

// Link is one hyperlink occurrence inside a note.
type Link struct {
	SourcePath string
	TargetPath string
	Fragment   string // heading slug after "#", "" when absent
	Range      protocol.Range
}

type Index struct {
	db *sql.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`
        PRAGMA foreign_keys = ON;
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertNote replaces the note row and all links originating from it in
// one transaction.
func (ix *Index) UpsertNote(note Note, links []Link) error {
	return ix.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
            INSERT INTO notes (path, title, last_modified)
            VALUES (?, ?, ?)
            ON CONFLICT(path) DO UPDATE SET
                title = excluded.title,
                last_modified = excluded.last_modified
        `, note.Path, note.Title, note.LastModified); err != nil {
			return fmt.Errorf("failed to upsert note: %w", err)
		}

		if _, err := tx.Exec(
			"DELETE FROM links WHERE source_path = ?", note.Path,
		); err != nil {
			return fmt.Errorf("failed to delete existing links: %w", err)
		}

		if len(links) == 0 {
			return nil
		}

		stmt, err := tx.Prepare(`
            INSERT INTO links
                (source_path, target_path, fragment,
                 start_line, start_char, end_line, end_char)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `)
		if err != nil {
			return fmt.Errorf("failed to prepare link insert statement: %w", err)
		}
		defer stmt.Close()

		for _, link := range links {
			if _, err := stmt.Exec(
				note.Path, link.TargetPath, link.Fragment,
				link.Range.Start.Line, link.Range.Start.Character,
				link.Range.End.Line, link.Range.End.Character,
			); err != nil {
				return fmt.Errorf("failed to insert link: %w", err)
			}
		}

		return nil
	})
}

// DeleteNote removes a note and, via the schema cascade, its outgoing
// links.
func (ix *Index) DeleteNote(path string) error {
	result, err := ix.db.Exec("DELETE FROM notes WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (ix *Index) Note(path string) (*Note, error) {
	var note Note
	err := ix.db.QueryRow(
		"SELECT path, title, last_modified FROM notes WHERE path = ?",
		path,
	).Scan(&note.Path, &note.Title, &note.LastModified)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	return &note, nil
}

// LastModified returns the recorded modification time of a note.
func (ix *Index) LastModified(path string) (int64, error) {
	note, err := ix.Note(path)
	if err != nil {
		return 0, err
	}
	return note.LastModified, nil
}

func (ix *Index) Notes() ([]Note, error) {
	rows, err := ix.db.Query(
		"SELECT path, title, last_modified FROM notes ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.Path, &note.Title, &note.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

func (ix *Index) Paths() ([]string, error) {
	rows, err := ix.db.Query("SELECT path FROM notes ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paths: %w", err)
	}

	return paths, nil
}

// ForwardLinks returns the links leaving a note, in document order.
func (ix *Index) ForwardLinks(sourcePath string) ([]Link, error) {
	rows, err := ix.db.Query(`
        SELECT source_path, target_path, fragment,
               start_line, start_char, end_line, end_char
        FROM links
        WHERE source_path = ?
        ORDER BY start_line, start_char
    `, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// Backlinks returns the links from anywhere in the workspace that point
// at targetPath.
func (ix *Index) Backlinks(targetPath string) ([]Link, error) {
	rows, err := ix.db.Query(`
        SELECT source_path, target_path, fragment,
               start_line, start_char, end_line, end_char
        FROM links
        WHERE target_path = ?
        ORDER BY source_path, start_line, start_char
    `, targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query backlinks: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// Links returns every link in the index, grouped by source note in
// document order.
func (ix *Index) Links() ([]Link, error) {
	rows, err := ix.db.Query(`
        SELECT source_path, target_path, fragment,
               start_line, start_char, end_line, end_char
        FROM links
        ORDER BY source_path, start_line, start_char
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// Clear drops every note and link, for a full reindex.
func (ix *Index) Clear() error {
	return ix.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM links"); err != nil {
			return fmt.Errorf("failed to clear links: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM notes"); err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		return nil
	})
}

func scanLinks(rows *sql.Rows) ([]Link, error) {
	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(
			&link.SourcePath, &link.TargetPath, &link.Fragment,
			&link.Range.Start.Line, &link.Range.Start.Character,
			&link.Range.End.Line, &link.Range.End.Character,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}
