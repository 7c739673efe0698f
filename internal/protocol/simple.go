package protocol

import (
	"fmt"

	"github.com/polarwire/pgwire/internal/wire"
)

// Run implements the Simple query driver (C6): sends sql as a single Query
// message and consumes the backend's response until ReadyForQuery,
// classifying the terminal message per §4.6.
func (c *Conn) Run(sql string) (Result, error) {
	if err := c.w.WriteQuery(sql); err != nil {
		c.markBroken()
		return Result{}, fmt.Errorf("protocol: sending Query: %w", err)
	}

	isExplain := ExtractIntent(sql) == IntentExplain

	var (
		columns           []wire.FieldDescription
		rows              [][][]byte
		hadRowDescription bool
		result            Result
		queryErr          error
	)

	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			c.markBroken()
			return Result{}, fmt.Errorf("protocol: reading query response: %w", err)
		}
		switch f.Type {
		case wire.RowDescriptionTag:
			columns, err = wire.ParseRowDescription(f)
			if err != nil {
				return Result{}, err
			}
			hadRowDescription = true
		case wire.DataRowTag:
			row, err := wire.ParseDataRow(f)
			if err != nil {
				return Result{}, err
			}
			rows = append(rows, row)
		case wire.CommandCompleteTag:
			tag, err := wire.ParseCommandComplete(f)
			if err != nil {
				return Result{}, err
			}
			result = classifyCommandComplete(tag, hadRowDescription, isExplain)
			result.Columns = columns
			result.Rows = rows
		case wire.EmptyQueryResponseTag:
			result = Result{Kind: ResultSuccess, Success: true}
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			queryErr = fmt.Errorf("protocol: %s", fields[wire.FieldMessage])
		case wire.NoticeResponseTag:
			fields, _ := wire.ParseFields(f)
			c.logger.Info("server notice", "message", fields[wire.FieldMessage])
		case wire.ReadyForQuery:
			status, err := wire.ParseReadyForQuery(f)
			if err != nil {
				return Result{}, err
			}
			c.txStatus = TxStatus(status)
			if queryErr != nil {
				return Result{}, queryErr
			}
			return result, nil
		default:
			return Result{}, fmt.Errorf("protocol: unexpected message %q during simple query", f.Type)
		}
	}
}

// Prepare runs an explicit `PREPARE name AS <sql>` through the Simple query
// path, validating and caching its intent first per §4.6/§4.9.
func (c *Conn) Prepare(name, sql string) error {
	if _, err := c.statements.Prepare(name, sql); err != nil {
		return err
	}
	if entry, ok := c.statements.Lookup(name); ok && entry.Parsed {
		return nil
	}
	_, err := c.Run(fmt.Sprintf("PREPARE %s AS %s", name, sql))
	if err != nil {
		return err
	}
	c.statements.MarkParsed(name)
	return nil
}
