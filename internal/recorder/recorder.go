package recorder

import "RoastGate/internal/domain/repository"

var (
	_ repository.EventSink = (*LogSink)(nil)
	_ repository.EventSink = (*KafkaSink)(nil)
	_ repository.EventSink = (*QueueSink)(nil)
	_ repository.EventSink = (*ClickHouseSink)(nil)
)
