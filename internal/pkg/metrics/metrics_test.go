package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStat struct {
	acquired, idle, total int32
	empty                 int64
}

func (f fakeStat) AcquiredConns() int32     { return f.acquired }
func (f fakeStat) IdleConns() int32         { return f.idle }
func (f fakeStat) TotalConns() int32        { return f.total }
func (f fakeStat) EmptyAcquireCount() int64 { return f.empty }

func TestUpdateDBPoolMetrics(t *testing.T) {
	before := testutil.ToFloat64(DBPoolEmptyAcquires)

	UpdateDBPoolMetrics(fakeStat{acquired: 2, idle: 3, total: 5, empty: lastEmptyAcquires + 4})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 5 {
		t.Errorf("expected 5 open conns, got %v", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 3 {
		t.Errorf("expected 3 idle conns, got %v", got)
	}

	// the counter only grows by the delta between snapshots
	UpdateDBPoolMetrics(fakeStat{total: 5, empty: lastEmptyAcquires})
	if got := testutil.ToFloat64(DBPoolEmptyAcquires) - before; got != 4 {
		t.Errorf("expected empty acquires to grow by 4, got %v", got)
	}
}
