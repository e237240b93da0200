package hmm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gonum.org/v1/gonum/mat"
)

// Redis key markers, kept from the original DBA/DBB/DBPI scheme but
// namespaced per run ID instead of being global.
const (
	keyQ  = "Q"
	keyP  = "P"
	keyA  = "a"
	keyPi = "pi"
)

// Checkpoint persists a fitted (Q, P, a, pi) parameter set to Redis and
// reloads it, so a long Baum-Welch run can be resumed rather than
// restarted from scratch. It adapts the original Redis persistence
// scheme (RPUSH-ing A/B/Pi rows under hand-rolled keys through a
// vendored client) to the real github.com/redis/go-redis/v9 client, and
// returns errors instead of calling os.Exit.
type Checkpoint struct {
	client *redis.Client
	prefix string
}

// NewCheckpoint wraps an existing Redis client. prefix namespaces keys so
// multiple runs/models can share one Redis instance.
func NewCheckpoint(client *redis.Client, prefix string) *Checkpoint {
	return &Checkpoint{client: client, prefix: prefix}
}

func (c *Checkpoint) key(runID, suffix string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, runID, suffix)
}

// Save RPUSHes every row of Q and P, plus the scalars a and pi, under keys
// derived from runID. An existing checkpoint under the same runID is
// replaced (each list key is deleted before being repopulated).
func (c *Checkpoint) Save(ctx context.Context, runID string, z *ZeroInflated, q *mat.Dense) error {
	m, _ := q.Dims()
	pipe := c.client.TxPipeline()

	pipe.Set(ctx, c.key(runID, keyA), strconv.FormatFloat(z.A, 'g', -1, 64), 0)
	pipe.Set(ctx, c.key(runID, keyPi), strconv.FormatFloat(z.Pi, 'g', -1, 64), 0)

	for i := 0; i < m; i++ {
		qKey := c.key(runID, rowKey(keyQ, i))
		pKey := c.key(runID, rowKey(keyP, i))
		pipe.Del(ctx, qKey, pKey)
		pipe.RPush(ctx, qKey, floatArgs(q.RawRowView(i))...)
		pipe.RPush(ctx, pKey, floatArgs(z.P.RawRowView(i))...)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Load reconstructs (Q, ZeroInflated) for a model with m states and cols
// (= r+1) emission columns from a prior Save under runID.
func (c *Checkpoint) Load(ctx context.Context, runID string, m, cols int) (*mat.Dense, *ZeroInflated, error) {
	aStr, err := c.client.Get(ctx, c.key(runID, keyA)).Result()
	if err != nil {
		return nil, nil, err
	}
	piStr, err := c.client.Get(ctx, c.key(runID, keyPi)).Result()
	if err != nil {
		return nil, nil, err
	}
	a, err := strconv.ParseFloat(aStr, 64)
	if err != nil {
		return nil, nil, err
	}
	pi, err := strconv.ParseFloat(piStr, 64)
	if err != nil {
		return nil, nil, err
	}

	q := mat.NewDense(m, m, nil)
	p := mat.NewDense(m, cols, nil)
	for i := 0; i < m; i++ {
		if err := loadRow(ctx, c.client, c.key(runID, rowKey(keyQ, i)), q.RawRowView(i)); err != nil {
			return nil, nil, err
		}
		if err := loadRow(ctx, c.client, c.key(runID, rowKey(keyP, i)), p.RawRowView(i)); err != nil {
			return nil, nil, err
		}
	}
	return q, &ZeroInflated{A: a, Pi: pi, P: p}, nil
}

func rowKey(base string, i int) string {
	return base + ":" + strconv.Itoa(i)
}

func floatArgs(row []float64) []interface{} {
	args := make([]interface{}, len(row))
	for i, v := range row {
		args[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return args
}

func loadRow(ctx context.Context, client *redis.Client, key string, dst []float64) error {
	vals, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return err
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("hmm: checkpoint row %q has %d values, want %d", key, len(vals), len(dst))
	}
	for i, s := range vals {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}
