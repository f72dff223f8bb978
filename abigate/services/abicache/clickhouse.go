package abicache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
)

type ClickHouseConfig struct {
	Endpoint string
	Database string
	User     string
	Password string
}

// ClickHouse stores every write as a new row; ReplacingMergeTree keeps the latest one per address.
type ClickHouse struct {
	conn driver.Conn
}

var _ Store = new(ClickHouse)

func NewClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Addr: []string{cfg.Endpoint},
	})
	if err != nil {
		return nil, err
	}

	err = conn.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS contract_abi
			(address FixedString(20), abi String, stored_at DateTime64(3))
			ENGINE = ReplacingMergeTree(stored_at)
			PRIMARY KEY (address)
			ORDER BY (address)`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create contract_abi table: %w", err)
	}

	return &ClickHouse{conn: conn}, nil
}

func (s *ClickHouse) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT abi FROM contract_abi FINAL WHERE address = $1`, string(address.Bytes()))

	var str string
	if err := row.Scan(&str); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, storageError("scan row of", address, err)
	}
	return decodeRecord(address, []byte(str))
}

func (s *ClickHouse) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	err := s.conn.Exec(ctx, `INSERT INTO contract_abi (address, abi, stored_at) VALUES ($1, $2, $3)`,
		string(address.Bytes()), string(desc.Raw()), time.Now())
	if err != nil {
		return storageError("insert", address, err)
	}
	return nil
}

func (s *ClickHouse) Close() error {
	return s.conn.Close()
}
