// Package pgbulk holds the contracts shared by the bulk loader: the model
// description records are mapped with, the connection and COPY channel
// interfaces, sentinel errors and exit codes.
//
// The loader itself lives in package bulk:
//
//	m := model.New()
//	_ = m.Register(Order{})
//	n, err := bulk.Insert(ctx, bulk.New(m), conn, orders)
package pgbulk
