package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mysteryweb/internal/entity"
)

func (c *Client) listCharacters(ctx context.Context) ([]entity.Character, error) {
	query := `
SELECT id, name, character_type, tier, logline, owned_element_ids, connections, character_puzzle_ids, event_ids
FROM characters
ORDER BY id
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []entity.Character
	for rows.Next() {
		var ch entity.Character
		if err := rows.Scan(
			&ch.ID,
			&ch.Name,
			&ch.Type,
			&ch.Tier,
			&ch.Logline,
			&ch.OwnedElementIDs,
			&ch.Connections,
			&ch.CharacterPuzzleIDs,
			&ch.EventIDs,
		); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character rows: %w", err)
	}
	return out, nil
}

func (c *Client) listElements(ctx context.Context) ([]entity.Element, error) {
	query := `
SELECT id, name, basic_type, status, first_available, owner_id, container_id, content_ids,
       timeline_event_id, required_for_puzzle_ids, rewarded_by_puzzle_ids, narrative_threads, sf_patterns
FROM elements
ORDER BY id
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing elements: %w", err)
	}
	defer rows.Close()

	var out []entity.Element
	for rows.Next() {
		var el entity.Element
		var patterns []byte
		if err := rows.Scan(
			&el.ID,
			&el.Name,
			&el.BasicType,
			&el.Status,
			&el.FirstAvailable,
			&el.OwnerID,
			&el.ContainerID,
			&el.ContentIDs,
			&el.TimelineEventID,
			&el.RequiredForPuzzleIDs,
			&el.RewardedByPuzzleIDs,
			&el.NarrativeThreads,
			&patterns,
		); err != nil {
			return nil, fmt.Errorf("scanning element: %w", err)
		}
		if len(patterns) > 0 {
			var p entity.SFPatterns
			if err := json.Unmarshal(patterns, &p); err != nil {
				return nil, fmt.Errorf("unmarshaling sf patterns for %s: %w", el.ID, err)
			}
			if !p.IsEmpty() {
				el.SFPatterns = &p
			}
		}
		out = append(out, el)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating element rows: %w", err)
	}
	return out, nil
}

func (c *Client) listPuzzles(ctx context.Context) ([]entity.Puzzle, error) {
	query := `
SELECT id, name, timing, puzzle_element_ids, reward_ids, parent_item_id, sub_puzzle_ids, narrative_threads
FROM puzzles
ORDER BY id
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing puzzles: %w", err)
	}
	defer rows.Close()

	var out []entity.Puzzle
	for rows.Next() {
		var p entity.Puzzle
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Timing,
			&p.PuzzleElementIDs,
			&p.RewardIDs,
			&p.ParentItemID,
			&p.SubPuzzleIDs,
			&p.NarrativeThreads,
		); err != nil {
			return nil, fmt.Errorf("scanning puzzle: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating puzzle rows: %w", err)
	}
	return out, nil
}

func (c *Client) listTimeline(ctx context.Context) ([]entity.TimelineEvent, error) {
	query := `
SELECT id, name, event_date, notes, characters_involved_ids
FROM timeline_events
ORDER BY id
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing timeline events: %w", err)
	}
	defer rows.Close()

	var out []entity.TimelineEvent
	for rows.Next() {
		var ev entity.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Notes, &ev.CharactersInvolvedIDs); err != nil {
			return nil, fmt.Errorf("scanning timeline event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline rows: %w", err)
	}
	return out, nil
}

// Import upserts every entity of data in one transaction.
func (c *Client) Import(ctx context.Context, data *entity.Dataset) error {
	if data == nil {
		return nil
	}
	return pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		for _, ch := range data.Characters {
			_, err := tx.Exec(ctx, `
INSERT INTO characters (id, name, character_type, tier, logline, owned_element_ids, connections, character_puzzle_ids, event_ids)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::text[]), COALESCE($7, '{}'::text[]), COALESCE($8, '{}'::text[]), COALESCE($9, '{}'::text[]))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    character_type = EXCLUDED.character_type,
    tier = EXCLUDED.tier,
    logline = EXCLUDED.logline,
    owned_element_ids = EXCLUDED.owned_element_ids,
    connections = EXCLUDED.connections,
    character_puzzle_ids = EXCLUDED.character_puzzle_ids,
    event_ids = EXCLUDED.event_ids
`, ch.ID, ch.Name, ch.Type, ch.Tier, ch.Logline, ch.OwnedElementIDs, ch.Connections, ch.CharacterPuzzleIDs, ch.EventIDs)
			if err != nil {
				return fmt.Errorf("upserting character %s: %w", ch.ID, err)
			}
		}

		for _, el := range data.Elements {
			var patterns []byte
			if !el.SFPatterns.IsEmpty() {
				var err error
				if patterns, err = json.Marshal(el.SFPatterns); err != nil {
					return fmt.Errorf("marshaling sf patterns for %s: %w", el.ID, err)
				}
			}
			_, err := tx.Exec(ctx, `
INSERT INTO elements (id, name, basic_type, status, first_available, owner_id, container_id, content_ids,
                      timeline_event_id, required_for_puzzle_ids, rewarded_by_puzzle_ids, narrative_threads, sf_patterns)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::text[]), $9, COALESCE($10, '{}'::text[]), COALESCE($11, '{}'::text[]), COALESCE($12, '{}'::text[]), $13)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    basic_type = EXCLUDED.basic_type,
    status = EXCLUDED.status,
    first_available = EXCLUDED.first_available,
    owner_id = EXCLUDED.owner_id,
    container_id = EXCLUDED.container_id,
    content_ids = EXCLUDED.content_ids,
    timeline_event_id = EXCLUDED.timeline_event_id,
    required_for_puzzle_ids = EXCLUDED.required_for_puzzle_ids,
    rewarded_by_puzzle_ids = EXCLUDED.rewarded_by_puzzle_ids,
    narrative_threads = EXCLUDED.narrative_threads,
    sf_patterns = EXCLUDED.sf_patterns
`, el.ID, el.Name, el.BasicType, el.Status, el.FirstAvailable, el.OwnerID, el.ContainerID, el.ContentIDs,
				el.TimelineEventID, el.RequiredForPuzzleIDs, el.RewardedByPuzzleIDs, el.NarrativeThreads, patterns)
			if err != nil {
				return fmt.Errorf("upserting element %s: %w", el.ID, err)
			}
		}

		for _, p := range data.Puzzles {
			_, err := tx.Exec(ctx, `
INSERT INTO puzzles (id, name, timing, puzzle_element_ids, reward_ids, parent_item_id, sub_puzzle_ids, narrative_threads)
VALUES ($1, $2, $3, COALESCE($4, '{}'::text[]), COALESCE($5, '{}'::text[]), $6, COALESCE($7, '{}'::text[]), COALESCE($8, '{}'::text[]))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    timing = EXCLUDED.timing,
    puzzle_element_ids = EXCLUDED.puzzle_element_ids,
    reward_ids = EXCLUDED.reward_ids,
    parent_item_id = EXCLUDED.parent_item_id,
    sub_puzzle_ids = EXCLUDED.sub_puzzle_ids,
    narrative_threads = EXCLUDED.narrative_threads
`, p.ID, p.Name, p.Timing, p.PuzzleElementIDs, p.RewardIDs, p.ParentItemID, p.SubPuzzleIDs, p.NarrativeThreads)
			if err != nil {
				return fmt.Errorf("upserting puzzle %s: %w", p.ID, err)
			}
		}

		for _, ev := range data.Timeline {
			_, err := tx.Exec(ctx, `
INSERT INTO timeline_events (id, name, event_date, notes, characters_involved_ids)
VALUES ($1, $2, $3, $4, COALESCE($5, '{}'::text[]))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    event_date = EXCLUDED.event_date,
    notes = EXCLUDED.notes,
    characters_involved_ids = EXCLUDED.characters_involved_ids
`, ev.ID, ev.Name, ev.Date, ev.Notes, ev.CharactersInvolvedIDs)
			if err != nil {
				return fmt.Errorf("upserting timeline event %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}
