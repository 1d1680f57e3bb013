package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewID generates a snowflake ID using a node ID from the SNOWFLAKE_NODE
// environment variable (default 1). IDs are time-ordered and never reused.
func NewID() int64 {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			// out-of-range node IDs fall back to node 0
			n, _ = snowflake.NewNode(0)
		}
		node = n
	})
	return node.Generate().Int64()
}

// NewKSUID generates a globally unique KSUID string, used for uploaded
// file names where a sortable opaque token is enough.
func NewKSUID() string {
	return ksuid.New().String()
}
