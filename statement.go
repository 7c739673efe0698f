package pgwire

// PreparedStatement binds a name to one SQL text on one connection, so
// repeated executions can skip re-specifying both. Use the package-level
// QueryEx generic function with Runner() and Name() to decode into a
// concrete record type; Exec covers Command-style statements directly.
type PreparedStatement struct {
	runner preparedRunner
	name   string
}

// Prepare registers sql under name on r (a *Connection or *PooledConn) and
// returns a handle for repeated parameterized execution.
func Prepare(r preparedRunner, name, sql string) (*PreparedStatement, error) {
	if err := r.Prepare(name, sql); err != nil {
		return nil, err
	}
	return &PreparedStatement{runner: r, name: name}, nil
}

// Name returns the statement's registered name.
func (ps *PreparedStatement) Name() string { return ps.name }

// Runner returns the connection the statement was prepared on, for passing
// to the package-level QueryEx generic function.
func (ps *PreparedStatement) Runner() preparedRunner { return ps.runner }

// Exec executes the statement with params and returns the affected-row
// count for Command results, or 0 for Select/Success/Explain results.
func (ps *PreparedStatement) Exec(params ...Param) (int64, error) {
	res, err := ps.runner.executeEx(ps.name, params)
	if err != nil {
		return 0, err
	}
	if res.Kind == ResultCommand {
		return res.RowsAffected, nil
	}
	return 0, nil
}
