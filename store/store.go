// Package store exports a finished graph.Program into Neo4j for ad-hoc
// querying, batching writes the same way the retrieved go-callgraph-neo4j
// tool does: UNWIND a slice of rows into a single MERGE statement instead
// of issuing one query per node or edge.
package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/han-qiu/bloaty/graph"
)

// Neo4jExporter batch-upserts a Program's symbol and file graph into a
// Neo4j instance. It is entirely optional: callers that never construct
// one pay no cost, and the CLI only builds one when given a -neo4j-uri.
type Neo4jExporter struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
}

// NewNeo4jExporter connects to uri and returns a ready-to-use exporter.
func NewNeo4jExporter(ctx context.Context, uri, user, password string) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("store: creating neo4j driver: %w", err)
	}
	return &Neo4jExporter{driver: driver, ctx: ctx}, nil
}

// Close releases the underlying driver resources.
func (e *Neo4jExporter) Close() error {
	return e.driver.Close(e.ctx)
}

func (e *Neo4jExporter) run(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(e.ctx, e.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// CreateIndexes ensures the indexes the batch MERGE queries rely on for
// fast matching exist. Safe to call every run; IF NOT EXISTS makes it
// idempotent.
func (e *Neo4jExporter) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX bloaty_symbol_id IF NOT EXISTS FOR (n:Symbol) ON (n.id)",
		"CREATE INDEX bloaty_file_name IF NOT EXISTS FOR (n:File) ON (n.name)",
	}
	for _, q := range indexes {
		if err := e.run(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// Export pushes every symbol, file, and edge in p, reachable from the
// entry point or not. It assumes
// PropagateWeight has already run so Weight/MaxWeight are meaningful in
// the exported graph.
func (e *Neo4jExporter) Export(p *graph.Program) error {
	if err := e.exportSymbols(p); err != nil {
		return err
	}
	if err := e.exportFiles(p); err != nil {
		return err
	}
	if err := e.exportReferences(p); err != nil {
		return err
	}
	if err := e.exportFileMembership(p); err != nil {
		return err
	}
	return nil
}

func (e *Neo4jExporter) exportSymbols(p *graph.Program) error {
	var batch []map[string]any
	p.ForEachSymbol(func(s *graph.Symbol) {
		batch = append(batch, map[string]any{
			"id":         int64(s.ID),
			"name":       s.Name,
			"pretty":     s.PrettyName,
			"addr":       int64(s.Addr),
			"size":       int64(s.Size),
			"is_data":    s.IsData,
			"weight":     int64(s.Weight),
			"max_weight": int64(s.MaxWeight),
		})
	})
	if len(batch) == 0 {
		return nil
	}
	return e.run(
		`UNWIND $batch AS row
		 MERGE (n:Symbol {id: row.id})
		 SET n.name = row.name, n.pretty_name = row.pretty, n.addr = row.addr,
		     n.size = row.size, n.is_data = row.is_data,
		     n.weight = row.weight, n.max_weight = row.max_weight`,
		map[string]any{"batch": batch},
	)
}

func (e *Neo4jExporter) exportFiles(p *graph.Program) error {
	var batch []map[string]any
	p.ForEachFile(func(f *graph.File) {
		batch = append(batch, map[string]any{
			"name":   f.Name,
			"weight": int64(f.SourceLineWeight),
		})
	})
	if len(batch) == 0 {
		return nil
	}
	return e.run(
		`UNWIND $batch AS row
		 MERGE (n:File {name: row.name})
		 SET n.source_line_weight = row.weight`,
		map[string]any{"batch": batch},
	)
}

func (e *Neo4jExporter) exportReferences(p *graph.Program) error {
	var batch []map[string]any
	p.ForEachSymbol(func(s *graph.Symbol) {
		for _, ref := range s.Refs {
			batch = append(batch, map[string]any{
				"from": int64(s.ID),
				"to":   int64(ref),
			})
		}
	})
	if len(batch) == 0 {
		return nil
	}
	return e.run(
		`UNWIND $batch AS row
		 MATCH (a:Symbol {id: row.from}), (b:Symbol {id: row.to})
		 MERGE (a)-[:REFERENCES]->(b)`,
		map[string]any{"batch": batch},
	)
}

func (e *Neo4jExporter) exportFileMembership(p *graph.Program) error {
	var batch []map[string]any
	p.ForEachSymbol(func(s *graph.Symbol) {
		if s.File == nil {
			return
		}
		batch = append(batch, map[string]any{
			"id":   int64(s.ID),
			"file": s.File.Name,
		})
	})
	if len(batch) == 0 {
		return nil
	}
	return e.run(
		`UNWIND $batch AS row
		 MATCH (s:Symbol {id: row.id}), (f:File {name: row.file})
		 MERGE (s)-[:IN_FILE]->(f)`,
		map[string]any{"batch": batch},
	)
}
