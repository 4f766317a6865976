package events

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "time"

    "github.com/segmentio/kafka-go"
)

const DefaultTopic = "catalog.updated"

// Kafka publishes and consumes CatalogUpdated on one topic.
type Kafka struct {
    Brokers []string
    Topic   string
    GroupID string

    writer *kafka.Writer
}

func NewKafka(brokers []string, topic, groupID string) *Kafka {
    if topic == "" { topic = DefaultTopic }
    return &Kafka{
        Brokers: brokers,
        Topic:   topic,
        GroupID: groupID,
        writer: &kafka.Writer{
            Addr:         kafka.TCP(brokers...),
            Topic:        topic,
            Balancer:     &kafka.Hash{},
            RequiredAcks: kafka.RequireOne,
        },
    }
}

// PublishCatalogUpdated keys messages by property so one property's events
// stay ordered on a partition.
func (k *Kafka) PublishCatalogUpdated(ctx context.Context, evt CatalogUpdated) error {
    data, err := json.Marshal(evt)
    if err != nil { return err }
    return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(evt.PropertyKey), Value: data, Time: evt.At})
}

func (k *Kafka) SubscribeCatalogUpdated(ctx context.Context) <-chan CatalogUpdated {
    out := make(chan CatalogUpdated, 64)
    reader := kafka.NewReader(kafka.ReaderConfig{
        Brokers:        k.Brokers,
        Topic:          k.Topic,
        GroupID:        k.GroupID,
        MinBytes:       1,
        MaxBytes:       1 << 20,
        CommitInterval: time.Second,
    })
    go func() {
        defer close(out)
        defer reader.Close()
        for {
            msg, err := reader.ReadMessage(ctx)
            if err != nil {
                if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
                    log.Printf("[WARN] kafka read %s: %v", k.Topic, err)
                }
                return
            }
            evt, err := decodeCatalogUpdated(msg.Value)
            if err != nil {
                log.Printf("[WARN] kafka: skip message at offset %d: %v", msg.Offset, err)
                continue
            }
            select {
            case out <- evt:
            case <-ctx.Done():
                return
            }
        }
    }()
    return out
}

func (k *Kafka) Close() error { return k.writer.Close() }

func decodeCatalogUpdated(b []byte) (CatalogUpdated, error) {
    var evt CatalogUpdated
    if err := json.Unmarshal(b, &evt); err != nil { return evt, err }
    if evt.PropertyKey == "" { return evt, errors.New("missing property_key") }
    return evt, nil
}
