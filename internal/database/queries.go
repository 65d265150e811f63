package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"papersumm/internal/domain"
)

var ErrNotFound = errors.New("not found")

type Document struct {
	ID          string
	FileName    string
	ContentType string
	Text        string
	Sections    []string
	CreatedAt   time.Time
}

type Evaluation struct {
	ID               int64
	Label            string
	SystemSummary    string
	ReferenceSummary string
	Scores           domain.Scores
	CreatedAt        time.Time
}

func (d *Database) SaveDocument(ctx context.Context, doc Document) error {
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		return errors.New("document ID is empty")
	}

	sections := doc.Sections
	if sections == nil {
		sections = []string{}
	}

	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	query := `insert into documents (id, file_name, content_type, body, sections, created_at)
	values (?, ?, ?, ?, ?, ?)`

	_, err = d.db.ExecContext(ctx, query,
		doc.ID,
		doc.FileName,
		doc.ContentType,
		doc.Text,
		string(sectionsJSON),
		doc.CreatedAt.Unix())

	return err
}

func (d *Database) GetDocument(ctx context.Context, id string) (*Document, error) {
	query := `select id, file_name, content_type, body, sections, created_at
	from documents
	where id = ?`

	var (
		doc          Document
		sectionsJSON string
		createdAt    int64
	)

	err := d.db.QueryRowContext(ctx, query, strings.TrimSpace(id)).
		Scan(&doc.ID, &doc.FileName, &doc.ContentType, &doc.Text, &sectionsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	if err = json.Unmarshal([]byte(sectionsJSON), &doc.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	doc.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &doc, nil
}

func (d *Database) SaveEvaluation(ctx context.Context, e Evaluation) (int64, error) {
	query := `insert into evaluations
	(label, system_summary, reference_summary, rouge1, rouge2, rouge_l, bleu, created_at)
	values (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		e.Label,
		e.SystemSummary,
		e.ReferenceSummary,
		e.Scores.Rouge1,
		e.Scores.Rouge2,
		e.Scores.RougeL,
		e.Scores.BLEU,
		e.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (d *Database) CountEvaluations(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "select count(*) from evaluations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to scan row: %w", err)
	}

	return count, nil
}

// PruneBefore deletes documents and evaluations created before cutoff and
// returns how many rows of each were removed.
func (d *Database) PruneBefore(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			d.log.ErrorContext(ctx, "Failed to roll back tx",
				"error", rollbackErr,
				"operation", "PruneBefore")
		}
	}()

	docs, err := tx.ExecContext(ctx, "delete from documents where created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("delete documents: %w", err)
	}

	evals, err := tx.ExecContext(ctx, "delete from evaluations where created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("delete evaluations: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit tx: %w", err)
	}

	docCount, err := docs.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("count deleted documents: %w", err)
	}

	evalCount, err := evals.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("count deleted evaluations: %w", err)
	}

	return docCount, evalCount, nil
}
