package invoices

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"invoice-pipeline/internal/server/models"
)

const copyInvoicesSQL = `COPY invoices (` + insertColumns + `) FROM STDIN (FORMAT csv, DELIMITER '|')`

// copyBatch streams the whole batch through a single COPY statement. COPY is
// atomic on the server side: a failure anywhere rolls the whole batch back.
// Generated ids are not reported back for this path.
func (r *PostgresRepository) copyBatch(ctx context.Context, recs []*models.InvoiceRecord) (int, error) {
	buf, err := encodeCopyRows(recs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode copy batch: %w", err)
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var copied int64
	err = conn.Raw(func(driverConn any) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("bulk copy requires the pgx stdlib driver")
		}
		tag, err := stdConn.Conn().PgConn().CopyFrom(ctx, buf, copyInvoicesSQL)
		if err != nil {
			return err
		}
		copied = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk copy failed: %w", err)
	}
	return int(copied), nil
}

// encodeCopyRows serializes the batch into the pipe-delimited CSV stream the
// COPY statement expects, columns in insertColumns order. Empty optional
// fields are written unquoted, which COPY reads as NULL.
func encodeCopyRows(recs []*models.InvoiceRecord) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Comma = '|'

	for _, rec := range recs {
		confidence := ""
		if rec.ExtractionConfidence != nil {
			confidence = strconv.FormatFloat(*rec.ExtractionConfidence, 'f', -1, 64)
		}
		row := []string{
			rec.InvoiceNumber,
			rec.VendorName,
			rec.InvoiceDate.Format("2006-01-02"),
			rec.Amount.String(),
			rec.Category,
			string(rec.SourceType),
			rec.SourceFile,
			confidence,
			rec.CreatedBy,
			rec.Notes,
			string(rec.TransactionType),
			rec.IngestedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}
