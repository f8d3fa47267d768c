package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the snowflake node. Each binary gets its own node ID
// (server 1, worker 2) so posts ingested on the server and opportunities
// created on the worker never collide. Safe to call more than once; only
// the first call takes effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered int64 ID. Time-ordering matters here: raw
// posts and evidence rows sort by (timestamp, id), so ties break in
// creation order.
func New() int64 {
	return node.Generate().Int64()
}
