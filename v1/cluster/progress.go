package cluster

import "context"

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(ctx context.Context, result ShardTransferResult)

// Progress calls f.
func (f ProgressFunc) Progress(ctx context.Context, result ShardTransferResult) {
	f(ctx, result)
}

// LoggerSink writes every finished shard operation to a Logger.
type LoggerSink struct {
	logger Logger
}

// NewLoggerSink returns a sink logging successes at info and failures at warn level.
func NewLoggerSink(logger Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Progress(_ context.Context, result ShardTransferResult) {
	fields := resultFields(result)
	if result.IsSuccess {
		s.logger.Info("shard operation finished", nil, fields)
		return
	}
	s.logger.Warn("shard operation finished with failure", result.Err, fields)
}

// MultiSink fans a result out to every non-nil sink in order.
func MultiSink(sinks ...ProgressSink) ProgressSink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multiSink []ProgressSink

func (m multiSink) Progress(ctx context.Context, result ShardTransferResult) {
	for _, s := range m {
		s.Progress(ctx, result)
	}
}
