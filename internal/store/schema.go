package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS debts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    institution          TEXT NOT NULL DEFAULT '',
    kind                 TEXT NOT NULL DEFAULT '',
    balance              REAL NOT NULL DEFAULT 0,
    interest_rate        REAL NOT NULL DEFAULT 0,
    minimum_payment      REAL NOT NULL DEFAULT 0,
    original_amount      REAL NOT NULL DEFAULT 0,
    position             INTEGER NOT NULL DEFAULT 0,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projections (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at          TEXT NOT NULL,
    strategy             TEXT NOT NULL,
    extra_payment        REAL NOT NULL,
    total_balance        REAL NOT NULL,
    months               INTEGER NOT NULL,
    total_interest       REAL NOT NULL,
    wont_payoff          INTEGER NOT NULL DEFAULT 0,
    debt_free_date       TEXT
);

CREATE INDEX IF NOT EXISTS idx_projections_recorded ON projections(recorded_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS debts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    institution          TEXT NOT NULL DEFAULT '',
    kind                 TEXT NOT NULL DEFAULT '',
    balance              DOUBLE PRECISION NOT NULL DEFAULT 0,
    interest_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
    minimum_payment      DOUBLE PRECISION NOT NULL DEFAULT 0,
    original_amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
    position             INTEGER NOT NULL DEFAULT 0,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projections (
    id                   BIGSERIAL PRIMARY KEY,
    recorded_at          TEXT NOT NULL,
    strategy             TEXT NOT NULL,
    extra_payment        DOUBLE PRECISION NOT NULL,
    total_balance        DOUBLE PRECISION NOT NULL,
    months               INTEGER NOT NULL,
    total_interest       DOUBLE PRECISION NOT NULL,
    wont_payoff          INTEGER NOT NULL DEFAULT 0,
    debt_free_date       TEXT
);

CREATE INDEX IF NOT EXISTS idx_projections_recorded ON projections(recorded_at);
`
