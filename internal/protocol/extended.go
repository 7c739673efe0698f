package protocol

import (
	"fmt"

	"github.com/polarwire/pgwire/internal/encoder"
	"github.com/polarwire/pgwire/internal/wire"
)

// PrepareEx implements the Extended query driver's prepare step (C7): Parse
// followed by Sync, expecting ParseComplete then ReadyForQuery. The
// statement's intent is validated and cached exactly like the Simple
// protocol's Prepare.
func (c *Conn) PrepareEx(name, sql string) error {
	if _, err := c.statements.Prepare(name, sql); err != nil {
		return err
	}
	if entry, ok := c.statements.Lookup(name); ok && entry.Parsed {
		return nil
	}
	if err := c.w.WriteParse(name, sql, nil); err != nil {
		c.markBroken()
		return fmt.Errorf("protocol: sending Parse: %w", err)
	}
	if err := c.w.WriteSync(); err != nil {
		c.markBroken()
		return fmt.Errorf("protocol: sending Sync: %w", err)
	}

	var parseErr error
	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			c.markBroken()
			return fmt.Errorf("protocol: reading Parse response: %w", err)
		}
		switch f.Type {
		case wire.ParseCompleteTag:
			// continue to ReadyForQuery
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			parseErr = fmt.Errorf("protocol: %s", fields[wire.FieldMessage])
		case wire.NoticeResponseTag:
			// ignored here; surfaced on execute
		case wire.ReadyForQuery:
			status, err := wire.ParseReadyForQuery(f)
			if err != nil {
				return err
			}
			c.txStatus = TxStatus(status)
			if parseErr != nil {
				return parseErr
			}
			c.statements.MarkParsed(name)
			return nil
		default:
			return fmt.Errorf("protocol: unexpected message %q during Parse", f.Type)
		}
	}
}

// ExecuteEx implements the Extended query driver's execute step (C7):
// Bind + Describe(portal) + Execute + Sync, always requesting binary result
// columns. Classification matches the Simple query driver.
func (c *Conn) ExecuteEx(name string, params []encoder.Encoded) (Result, error) {
	entry, ok := c.statements.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("protocol: no prepared statement named %q", name)
	}

	paramFormats := make([]int16, len(params))
	paramValues := make([][]byte, len(params))
	for i, p := range params {
		paramFormats[i] = int16(p.Format)
		paramValues[i] = p.Value
	}

	const portal = ""
	if err := c.w.WriteBind(portal, name, paramFormats, paramValues, []int16{1}); err != nil {
		c.markBroken()
		return Result{}, fmt.Errorf("protocol: sending Bind: %w", err)
	}
	if err := c.w.WriteDescribe(wire.DescribePortal, portal); err != nil {
		c.markBroken()
		return Result{}, fmt.Errorf("protocol: sending Describe: %w", err)
	}
	if err := c.w.WriteExecute(portal, 0); err != nil {
		c.markBroken()
		return Result{}, fmt.Errorf("protocol: sending Execute: %w", err)
	}
	if err := c.w.WriteSync(); err != nil {
		c.markBroken()
		return Result{}, fmt.Errorf("protocol: sending Sync: %w", err)
	}

	isExplain := entry.Intent == IntentExplain

	var (
		columns           []wire.FieldDescription
		rows              [][][]byte
		hadRowDescription bool
		result            Result
		execErr           error
	)

	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			c.markBroken()
			return Result{}, fmt.Errorf("protocol: reading execute response: %w", err)
		}
		switch f.Type {
		case wire.BindCompleteTag:
		case wire.RowDescriptionTag:
			columns, err = wire.ParseRowDescription(f)
			if err != nil {
				return Result{}, err
			}
			hadRowDescription = true
		case wire.NoDataTag:
			hadRowDescription = false
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
		case wire.PortalSuspendedTag:
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			execErr = fmt.Errorf("protocol: %s", fields[wire.FieldMessage])
		case wire.NoticeResponseTag:
			fields, _ := wire.ParseFields(f)
			c.logger.Info("server notice", "message", fields[wire.FieldMessage])
		case wire.ReadyForQuery:
			status, err := wire.ParseReadyForQuery(f)
			if err != nil {
				return Result{}, err
			}
			c.txStatus = TxStatus(status)
			if execErr != nil {
				return Result{}, execErr
			}
			return result, nil
		default:
			return Result{}, fmt.Errorf("protocol: unexpected message %q during execute", f.Type)
		}
	}
}

// CloseStatement closes a server-side prepared statement and drops it from
// the local cache.
func (c *Conn) CloseStatement(name string) error {
	if err := c.w.WriteCloseStatement(name); err != nil {
		c.markBroken()
		return fmt.Errorf("protocol: sending Close: %w", err)
	}
	if err := c.w.WriteSync(); err != nil {
		c.markBroken()
		return fmt.Errorf("protocol: sending Sync: %w", err)
	}
	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			c.markBroken()
			return fmt.Errorf("protocol: reading Close response: %w", err)
		}
		switch f.Type {
		case wire.CloseCompleteTag:
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			return fmt.Errorf("protocol: %s", fields[wire.FieldMessage])
		case wire.ReadyForQuery:
			status, err := wire.ParseReadyForQuery(f)
			if err != nil {
				return err
			}
			c.txStatus = TxStatus(status)
			c.statements.Forget(name)
			return nil
		default:
			return fmt.Errorf("protocol: unexpected message %q during Close", f.Type)
		}
	}
}
