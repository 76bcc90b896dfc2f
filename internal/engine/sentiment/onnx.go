package sentiment

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv guards the process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect; later calls return its result.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxSession wraps a DynamicAdvancedSession for a BERT sequence
// classification model whose single output is [batch, num_labels] logits.
type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	numLabels  int64
}

// newONNXSession loads the model and validates its input and output tensors.
func newONNXSession(modelPath, libPath string, threads int) (*onnxSession, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputNames, err := validateInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	outputName := outputs[0].Name
	for _, o := range outputs {
		if o.Name == "logits" {
			outputName = o.Name
		}
	}
	var dims ort.Shape
	for _, o := range outputs {
		if o.Name == outputName {
			dims = o.Dimensions
		}
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D logits tensor, got %v", dims)
	}
	numLabels := dims[1]
	if numLabels != int64(len(labelOrder)) {
		return nil, fmt.Errorf("onnx: model emits %d labels, label table has %d", numLabels, len(labelOrder))
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	if threads > 0 {
		opts.SetIntraOpNumThreads(threads)
	}
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:    session,
		inputNames: inputNames,
		outputName: outputName,
		numLabels:  numLabels,
	}, nil
}

// validateInputs requires input_ids and attention_mask; token_type_ids is
// passed only when the model declares it (DistilBERT-style exports do not).
func validateInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	nameSet := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		nameSet[inp.Name] = true
	}
	names := []string{"input_ids", "attention_mask"}
	for _, name := range names {
		if !nameSet[name] {
			return nil, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	if nameSet["token_type_ids"] {
		names = append(names, "token_type_ids")
	}
	return names, nil
}

// infer runs one forward pass over a packed batch and returns the flat
// [batchSize * numLabels] logits.
func (s *onnxSession) infer(batch tokenized) ([]float32, error) {
	shape := ort.NewShape(batch.batchSize, batch.seqLen)

	feeds := map[string][]int64{
		"input_ids":      batch.inputIDs,
		"attention_mask": batch.attentionMask,
		"token_type_ids": batch.tokenTypeIDs,
	}
	inputs := make([]ort.Value, 0, len(s.inputNames))
	for _, name := range s.inputNames {
		t, err := ort.NewTensor(shape, feeds[name])
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create %s tensor: %w", name, err)
		}
		defer t.Destroy()
		inputs = append(inputs, t)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(batch.batchSize, s.numLabels))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run(inputs, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := out.GetData()
	logits := make([]float32, len(src))
	copy(logits, src)
	return logits, nil
}

func (s *onnxSession) close() error {
	return s.session.Destroy()
}
