package main

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"legacykafka/internal/compress"
	"legacykafka/internal/legacy"
	"legacykafka/internal/wire"
)

const (
	topic     = "orders"
	partition = int32(0)
)

func main() {
	fmt.Println("🧱 Building a magic=1, gzip-compressed legacy message set...")

	batch, err := buildBatch()
	if err != nil {
		log.Fatalf("build batch: %v", err)
	}
	fmt.Printf("   built %d bytes\n", len(batch))

	fmt.Println("\n📦 Framing it as a Produce request...")
	framed, err := frameProduceRequest(batch)
	if err != nil {
		log.Fatalf("frame request: %v", err)
	}
	fmt.Printf("   framed %d bytes (header + size prefix + message set)\n", framed.Len())

	fmt.Println("\n📬 Parsing the frame back out...")
	header, body, err := parseProduceRequest(framed)
	if err != nil {
		log.Fatalf("parse request: %v", err)
	}
	fmt.Printf("   api key=%d version=%d correlation=%d client=%q\n",
		header.APIKey, header.APIVersion, header.CorrelationID, header.ClientID)

	fmt.Println("\n🔍 Reading the message set back...")
	if err := readBatch(body); err != nil {
		log.Fatalf("read batch: %v", err)
	}
}

func buildBatch() ([]byte, error) {
	b, err := legacy.NewBuilder(legacy.Magic1, compress.GZIP, 1<<20, nil)
	if err != nil {
		return nil, err
	}

	records := []struct {
		key, value string
	}{
		{"order-1", `{"item":"widget","qty":3}`},
		{"order-2", `{"item":"gadget","qty":1}`},
		{"order-3", `{"item":"gizmo","qty":7}`},
	}

	for i, rec := range records {
		meta, err := b.Append(int64(i), nil, []byte(rec.key), []byte(rec.value))
		if err != nil {
			return nil, fmt.Errorf("append record %d: %w", i, err)
		}
		fmt.Printf("   appended offset=%d crc=%d\n", meta.Offset, meta.CRC)
	}

	return b.Build()
}

func frameProduceRequest(batch []byte) (*bytes.Buffer, error) {
	header := wire.EncodeRequestHeader(wire.RequestHeader{
		APIKey:        wire.APIKeyProduce,
		APIVersion:    1,
		CorrelationID: 1,
		ClientID:      "legacycodec-demo",
	})

	var body bytes.Buffer
	body.Write(header)
	body.Write(batch)

	var framed bytes.Buffer
	if err := wire.WriteSizePrefixed(&framed, body.Bytes()); err != nil {
		return nil, err
	}
	return &framed, nil
}

func parseProduceRequest(framed io.Reader) (wire.RequestHeader, []byte, error) {
	payload, err := wire.ReadSizePrefixed(framed)
	if err != nil {
		return wire.RequestHeader{}, nil, err
	}
	header, n, err := wire.DecodeRequestHeader(payload)
	if err != nil {
		return wire.RequestHeader{}, nil, err
	}
	return header, payload[n:], nil
}

func readBatch(buf []byte) error {
	r := legacy.NewReader(buf, legacy.Magic1, nil)

	ok, err := r.ValidateCRC()
	if err != nil {
		return err
	}
	fmt.Printf("   outer crc valid: %v\n", ok)

	next, err := r.NextOffset()
	if err != nil {
		return err
	}
	fmt.Printf("   next offset: %d\n", next)

	it := r.Iterate()
	for {
		msg, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("   offset=%d key=%s value=%s\n", msg.Offset, msg.Key, msg.Value)
	}
}
