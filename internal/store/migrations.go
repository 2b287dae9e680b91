package store

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL,
    text       TEXT    NOT NULL CHECK(length(text) BETWEEN 1 AND 500),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(user_id, text) ON CONFLICT IGNORE
);

CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);

CREATE TABLE IF NOT EXISTS users (
    user_id        INTEGER PRIMARY KEY,
    sign           TEXT,
    notify_hour    INTEGER NOT NULL DEFAULT 9,
    subscribed     INTEGER NOT NULL DEFAULT 1,
    last_sent_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_users_hour ON users(notify_hour);
CREATE INDEX IF NOT EXISTS idx_users_sent ON users(last_sent_date);

CREATE TABLE IF NOT EXISTS models (
    id     INTEGER PRIMARY KEY,
    key    TEXT NOT NULL UNIQUE,
    label  TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 0 CHECK (active IN (0,1))
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_models_single_active ON models(active) WHERE active = 1;

INSERT OR IGNORE INTO models(id, key, label, active) VALUES
    (1, 'deepseek/deepseek-chat-v3.1:free', 'DeepSeek V3.1 (free)', 1),
    (2, 'deepseek/deepseek-r1:free', 'DeepSeek R1 (free)', 0),
    (3, 'mistralai/mistral-small-24b-instruct-2501:free', 'Mistral Small 24b (free)', 0),
    (4, 'meta-llama/llama-3.1-8b-instruct:free', 'Llama 3.1 8B (free)', 0);

CREATE TABLE IF NOT EXISTS characters (
    id     INTEGER PRIMARY KEY,
    name   TEXT NOT NULL UNIQUE,
    prompt TEXT NOT NULL
);

INSERT OR IGNORE INTO characters(id, name, prompt) VALUES
    (1, 'Assistant', 'You are a friendly, concise assistant. Answer in the language of the question.'),
    (2, 'Astrologer', 'You are a seasoned astrologer. Answer with mystical flair, reference the stars, stay under 120 words.'),
    (3, 'Pirate', 'You are a grumpy old pirate captain. Answer in pirate speak, keep it short.'),
    (4, 'Poet', 'You are a romantic poet. Answer in four rhyming lines.');

CREATE TABLE IF NOT EXISTS user_characters (
    user_id      INTEGER PRIMARY KEY,
    character_id INTEGER NOT NULL REFERENCES characters(id)
);

CREATE TABLE IF NOT EXISTS service_call_log (
    id          TEXT PRIMARY KEY,
    service     TEXT NOT NULL,
    request     TEXT NOT NULL DEFAULT '',
    response    TEXT NOT NULL DEFAULT '',
    status_code INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    called_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_calls_service ON service_call_log(service);

CREATE TABLE IF NOT EXISTS error_log (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    level     TEXT NOT NULL,
    source    TEXT NOT NULL,
    message   TEXT NOT NULL,
    user_id   INTEGER NOT NULL DEFAULT 0,
    command   TEXT NOT NULL DEFAULT '',
    details   TEXT NOT NULL DEFAULT '',
    logged_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
