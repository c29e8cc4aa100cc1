package postgres

import (
	"context"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS characters (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    character_type       TEXT NOT NULL DEFAULT '',
    tier                 TEXT NOT NULL DEFAULT '',
    logline              TEXT NOT NULL DEFAULT '',
    owned_element_ids    TEXT[] DEFAULT '{}',
    connections          TEXT[] DEFAULT '{}',
    character_puzzle_ids TEXT[] DEFAULT '{}',
    event_ids            TEXT[] DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS elements (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL DEFAULT '',
    basic_type              TEXT NOT NULL DEFAULT '',
    status                  TEXT NOT NULL DEFAULT '',
    first_available         TEXT NOT NULL DEFAULT '',
    owner_id                TEXT NOT NULL DEFAULT '',
    container_id            TEXT NOT NULL DEFAULT '',
    content_ids             TEXT[] DEFAULT '{}',
    timeline_event_id       TEXT NOT NULL DEFAULT '',
    required_for_puzzle_ids TEXT[] DEFAULT '{}',
    rewarded_by_puzzle_ids  TEXT[] DEFAULT '{}',
    narrative_threads       TEXT[] DEFAULT '{}',
    sf_patterns             JSONB
);

CREATE TABLE IF NOT EXISTS puzzles (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    timing             TEXT NOT NULL DEFAULT '',
    puzzle_element_ids TEXT[] DEFAULT '{}',
    reward_ids         TEXT[] DEFAULT '{}',
    parent_item_id     TEXT NOT NULL DEFAULT '',
    sub_puzzle_ids     TEXT[] DEFAULT '{}',
    narrative_threads  TEXT[] DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS timeline_events (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL DEFAULT '',
    event_date              TEXT NOT NULL DEFAULT '',
    notes                   TEXT NOT NULL DEFAULT '',
    characters_involved_ids TEXT[] DEFAULT '{}'
);
`

// EnsureSchema creates the four entity tables when they are missing.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
