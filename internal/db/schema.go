package db

// Schema creates the resumes table. Rows are append-only.
const Schema = `
CREATE TABLE IF NOT EXISTS resumes (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	filename       TEXT NOT NULL,
	file_data      BYTEA,
	extracted_json JSONB NOT NULL,
	validation     JSONB NOT NULL,
	ats_report     JSONB NOT NULL,
	enhanced_json  JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_resumes_created_at ON resumes (created_at DESC);
`
