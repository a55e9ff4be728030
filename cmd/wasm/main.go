//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"unicode/utf8"

	"textsum/config"
	"textsum/internal/adapter/chunker"
	"textsum/internal/adapter/detector"
	"textsum/internal/adapter/inference"
	"textsum/internal/adapter/memstore"
	"textsum/internal/adapter/pool"
	"textsum/internal/adapter/postprocess"
	"textsum/internal/adapter/registry"
	"textsum/internal/domain"
	"textsum/internal/usecase"
)

var (
	cfg       *config.Config
	history   *memstore.MemoryStore
	det       *detector.MarkerDetector
	chk       *chunker.ParagraphChunker
	cleaner   *postprocess.Cleaner
	summarize *usecase.SummarizeUseCase
)

func init() {
	cfg = config.DefaultConfig()
	history = memstore.NewMemoryStore()
	det = detector.NewMarkerDetector(cfg.Detect.SampleChars, cfg.Detect.MinConfidence, cfg.Detect.DefaultLanguage, nil)
	chk = chunker.NewParagraphChunker(cfg.Summarize.ChunkChars)
	cleaner = postprocess.NewCleaner(cfg.Postprocess.MinSentenceChars, cfg.Postprocess.SimilarityThreshold)

	p := pool.New(2, nil)
	reg := registry.New(inference.NewExtractiveBackend(), p, registry.Options{}, nil)
	summarize = usecase.NewSummarizeUseCase(reg, det, chk, cleaner, p, usecase.OptionsFromConfig(cfg.Summarize), nil)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("textsumSummarize", js.FuncOf(summarizeContent))
	js.Global().Set("textsumDetect", js.FuncOf(detectLanguage))
	js.Global().Set("textsumChunk", js.FuncOf(chunkContent))
	js.Global().Set("textsumClean", js.FuncOf(cleanSummary))
	js.Global().Set("textsumHistory", js.FuncOf(listHistory))
	js.Global().Set("textsumClear", js.FuncOf(clearHistory))

	<-c
}

// summarizeContent returns a Promise: summarization waits on pool workers,
// which must not happen on the callback goroutine.
func summarizeContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: textsumSummarize(text, [maxLength], [minLength], [language])")
	}

	req := domain.SummarizationRequest{
		Text:      args[0].String(),
		MaxLength: cfg.Summarize.MaxLength,
		MinLength: cfg.Summarize.MinLength,
		ModelID:   cfg.Summarize.DefaultModel,
	}
	if len(args) > 1 {
		req.MaxLength = args[1].Int()
	}
	if len(args) > 2 {
		req.MinLength = args[2].Int()
	}
	if len(args) > 3 {
		req.Language = args[3].String()
	}

	handler := js.FuncOf(func(this js.Value, p []js.Value) interface{} {
		resolve := p[0]
		go func() {
			result, err := summarize.Summarize(context.Background(), req)
			if err != nil {
				resolve.Invoke(makeError(err.Error()))
				return
			}
			id, _ := history.Put(usecase.NewRecord("wasm", req, result))
			resolve.Invoke(makeResult(map[string]interface{}{
				"id":         id,
				"summary":    result.Text,
				"language":   result.ModelKey.Language,
				"chunksUsed": result.ChunksUsed,
				"calls":      result.Calls,
			}))
		}()
		return nil
	})

	promise := js.Global().Get("Promise").New(handler)
	handler.Release()
	return promise
}

func detectLanguage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: textsumDetect(text)")
	}
	text := args[0].String()

	scores := make(map[string]interface{})
	for lang, s := range det.Scores(text) {
		scores[lang] = s
	}
	return makeResult(map[string]interface{}{
		"language": det.Detect(text),
		"scores":   scores,
	})
}

func chunkContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: textsumChunk(text, [maxChars])")
	}
	maxChars := 0
	if len(args) > 1 {
		maxChars = args[1].Int()
	}

	chunks := chk.Split(args[0].String(), maxChars)
	output := make([]map[string]interface{}, 0, len(chunks))
	for _, c := range chunks {
		output = append(output, map[string]interface{}{
			"index":   c.SequenceIndex,
			"chars":   utf8.RuneCountInString(c.Content),
			"content": c.Content,
		})
	}
	return makeResult(map[string]interface{}{
		"chunks": output,
	})
}

func cleanSummary(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: textsumClean(summary)")
	}
	return makeResult(map[string]interface{}{
		"summary": cleaner.Clean(args[0].String()),
	})
}

func listHistory(this js.Value, args []js.Value) interface{} {
	limit := 0
	if len(args) > 0 {
		limit = args[0].Int()
	}
	records, err := history.List(limit)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"records": records,
	})
}

func clearHistory(this js.Value, args []js.Value) interface{} {
	if err := history.Clear(); err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
