package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/source"
)

var _ source.Source = (*Client)(nil)

// Client reads the dataset from four tables whose reference columns are text[].
type Client struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

func New(ctx context.Context, dsn string, log logger.Logger) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool, log: logger.OrNop(log)}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func (c *Client) Load(ctx context.Context) (*entity.Dataset, error) {
	data := &entity.Dataset{}
	var err error

	if data.Characters, err = c.listCharacters(ctx); err != nil {
		return nil, err
	}
	if data.Elements, err = c.listElements(ctx); err != nil {
		return nil, err
	}
	if data.Puzzles, err = c.listPuzzles(ctx); err != nil {
		return nil, err
	}
	if data.Timeline, err = c.listTimeline(ctx); err != nil {
		return nil, err
	}

	c.log.Debug("loaded dataset from postgres",
		"characters", len(data.Characters),
		"elements", len(data.Elements),
		"puzzles", len(data.Puzzles),
		"timeline", len(data.Timeline),
	)
	return data, nil
}
