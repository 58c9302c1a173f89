package gen

import (
	"fmt"

	"scaleplus-loyalty/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("gen", fx.Provide(NewSnowflakeNode))

const (
	PrefixUser        = "user"
	PrefixTransaction = "tx"
	PrefixReward      = "reward"
	PrefixMechanic    = "mech"
)

// IDGenerator hands out unique, prefixed identifiers.
type IDGenerator interface {
	NewID(prefix string) string
}

type SnowflakeNode struct {
	node *snowflake.Node
}

func NewSnowflakeNode(cfg *config.Config) (IDGenerator, error) {
	return NewNode(cfg.Snowflake.Node)
}

func NewNode(nodeID int64) (*SnowflakeNode, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeNode{node: node}, nil
}

func (s *SnowflakeNode) NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, s.node.Generate().String())
}
