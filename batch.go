package simsig

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/simsig/bitvec"
)

// Signer is the surface shared by Classic, Fast and SuperBit.
type Signer interface {
	// Width returns the signature width in bits.
	Width() int

	// CreateSignature computes the signature of an unweighted token stream.
	CreateSignature(items iter.Seq[[]byte]) *bitvec.Vector

	// CreateSignatureWeighted computes the signature of a weighted token
	// stream.
	CreateSignatureWeighted(items iter.Seq2[[]byte, float64]) (*bitvec.Vector, error)
}

// WeightedToken pairs a token with its weight for batch input.
type WeightedToken struct {
	Token  []byte
	Weight float64
}

// BatchOptions configures batch signature computation.
type BatchOptions struct {
	// Concurrency is the maximum number of documents processed in parallel.
	// Defaults to runtime.NumCPU().
	Concurrency int

	// Logger receives batch completion logs. Defaults to NoopLogger.
	Logger *Logger

	// Metrics receives per-document and per-batch timings.
	// Defaults to NoopMetricsCollector.
	Metrics MetricsCollector
}

// BatchSignatures computes one signature per document concurrently. Result i
// corresponds to docs[i]. Generators are stateless, so a single Signer is
// shared by all workers.
func BatchSignatures(ctx context.Context, s Signer, docs [][][]byte, optFns ...func(o *BatchOptions)) ([]*bitvec.Vector, error) {
	opts := batchOptions(optFns)

	out := make([]*bitvec.Vector, len(docs))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			docStart := time.Now()
			out[i] = s.CreateSignature(slices.Values(doc))
			opts.Metrics.RecordSignature(time.Since(docStart))

			return nil
		})
	}

	err := g.Wait()
	opts.Metrics.RecordBatch(len(docs), time.Since(start), err)
	opts.Logger.LogBatch(ctx, len(docs), err)

	if err != nil {
		return nil, err
	}
	return out, nil
}

// BatchSignaturesWeighted is BatchSignatures over weighted documents. The
// first document with a non-finite weight fails the whole batch.
func BatchSignaturesWeighted(ctx context.Context, s Signer, docs [][]WeightedToken, optFns ...func(o *BatchOptions)) ([]*bitvec.Vector, error) {
	opts := batchOptions(optFns)

	out := make([]*bitvec.Vector, len(docs))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			docStart := time.Now()
			sig, err := s.CreateSignatureWeighted(weightedValues(doc))
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			opts.Metrics.RecordSignature(time.Since(docStart))

			out[i] = sig
			return nil
		})
	}

	err := g.Wait()
	opts.Metrics.RecordBatch(len(docs), time.Since(start), err)
	opts.Logger.LogBatch(ctx, len(docs), err)

	if err != nil {
		return nil, err
	}
	return out, nil
}

func batchOptions(optFns []func(o *BatchOptions)) BatchOptions {
	opts := BatchOptions{
		Concurrency: runtime.NumCPU(),
		Logger:      NoopLogger(),
		Metrics:     NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return opts
}

func weightedValues(doc []WeightedToken) iter.Seq2[[]byte, float64] {
	return func(yield func([]byte, float64) bool) {
		for _, t := range doc {
			if !yield(t.Token, t.Weight) {
				return
			}
		}
	}
}
