package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"sin headers", nil, 0},
		{"sin contador", amqp.Table{"other": "x"}, 0},
		{"int32 (como vuelve del broker)", amqp.Table{retryHeader: int32(2)}, 2},
		{"int64", amqp.Table{retryHeader: int64(3)}, 3},
		{"int", amqp.Table{retryHeader: 1}, 1},
		{"tipo inesperado", amqp.Table{retryHeader: "4"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getRetryCount(tt.headers))
		})
	}
}

func TestSalesTopology(t *testing.T) {
	topo := SalesTopology{Exchange: "umkm.sales", Queue: "umkm.sales.stats-invalidation"}

	assert.Equal(t, "umkm.sales.stats-invalidation.dlq", topo.DeadLetterQueue())
	assert.Equal(t, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": "umkm.sales.stats-invalidation.dlq",
	}, topo.queueArgs())
	assert.NoError(t, topo.queueArgs().Validate())
}

func TestSalesTopology_ConsumerQueue(t *testing.T) {
	shared := SalesTopology{Exchange: "umkm.sales", Queue: "umkm.sales.stats-invalidation"}
	assert.Equal(t, "umkm.sales.stats-invalidation", shared.ConsumerQueue())

	perInstance := shared
	perInstance.InstanceID = "r1"
	assert.Equal(t, "umkm.sales.stats-invalidation.r1", perInstance.ConsumerQueue())
	assert.Equal(t, shared.DeadLetterQueue(), perInstance.DeadLetterQueue(), "el dead-letter es común a todas las réplicas")
}
