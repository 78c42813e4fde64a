package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveCheckpoint upserts the serialized state under its run key. The
// single-statement upsert keeps writes atomic per run identifier even
// when the store is shared across processes.
func (s *PostgresStore) SaveCheckpoint(state models.WorkflowState) error {
	if state.RunID == "" {
		return errors.New("checkpoint requires a run_id")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}
	_, err = s.db.Exec(`
		INSERT INTO checkpoints (run_id, state, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (run_id) DO UPDATE SET state = EXCLUDED.state, updated_at = CURRENT_TIMESTAMP`,
		state.RunID, data)
	if err != nil {
		return errors.Wrapf(err, "save checkpoint %s", state.RunID)
	}
	return nil
}

func (s *PostgresStore) LoadCheckpoint(runID string) (models.WorkflowState, error) {
	var data []byte
	err := s.db.Get(&data, "SELECT state FROM checkpoints WHERE run_id = $1", runID)
	if err == sql.ErrNoRows {
		return models.WorkflowState{}, storage.ErrNotFound
	}
	if err != nil {
		return models.WorkflowState{}, errors.Wrapf(err, "load checkpoint %s", runID)
	}
	var state models.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.WorkflowState{}, errors.Wrapf(err, "unmarshal checkpoint %s", runID)
	}
	return state, nil
}

func (s *PostgresStore) AppendRecord(rec models.RunRecord) error {
	data, err := json.Marshal(rec.State)
	if err != nil {
		return errors.Wrap(err, "marshal run record state")
	}
	_, err = s.db.Exec(`
		INSERT INTO run_records (id, run_id, alert_id, status, confidence_score, recommendation, tx_hash, bounty_amount, state, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.RunID, rec.AlertID, rec.Status, rec.ConfidenceScore,
		rec.Recommendation, rec.TxHash, rec.BountyAmount, data, rec.ArchivedAt)
	if err != nil {
		return errors.Wrapf(err, "append run record for %s", rec.RunID)
	}
	return nil
}

// runRecordRow is the flat scan target; the full state snapshot is
// rehydrated from the JSON column.
type runRecordRow struct {
	ID              string          `db:"id"`
	RunID           string          `db:"run_id"`
	AlertID         string          `db:"alert_id"`
	Status          string          `db:"status"`
	ConfidenceScore sql.NullFloat64 `db:"confidence_score"`
	Recommendation  string          `db:"recommendation"`
	TxHash          string          `db:"tx_hash"`
	BountyAmount    float64         `db:"bounty_amount"`
	State           []byte          `db:"state"`
	ArchivedAt      time.Time       `db:"archived_at"`
}

func (s *PostgresStore) QueryRecords(since time.Time) ([]models.RunRecord, error) {
	var rows []runRecordRow
	err := s.db.Select(&rows, `
		SELECT id, run_id, alert_id, status, confidence_score, recommendation, tx_hash, bounty_amount, state, archived_at
		FROM run_records WHERE archived_at >= $1 ORDER BY archived_at`, since)
	if err != nil {
		return nil, errors.Wrap(err, "query run records")
	}
	records := make([]models.RunRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.RunRecord{
			ID:             row.ID,
			RunID:          row.RunID,
			AlertID:        row.AlertID,
			Status:         models.WorkflowStatus(row.Status),
			Recommendation: models.Recommendation(row.Recommendation),
			TxHash:         row.TxHash,
			BountyAmount:   row.BountyAmount,
			ArchivedAt:     row.ArchivedAt,
		}
		if row.ConfidenceScore.Valid {
			score := row.ConfidenceScore.Float64
			rec.ConfidenceScore = &score
		}
		if err := json.Unmarshal(row.State, &rec.State); err != nil {
			return nil, errors.Wrapf(err, "unmarshal run record %s", row.ID)
		}
		records = append(records, rec)
	}
	return records, nil
}
