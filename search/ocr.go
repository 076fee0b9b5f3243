package search

// OCREngine recognises text in encoded image bytes. An engine is owned by a
// single worker and is never used concurrently.
type OCREngine interface {
	Recognize(image []byte) (string, error)
	Close() error
}

// OCRFactory creates one engine; it is called at most once per worker.
type OCRFactory func() (OCREngine, error)

// ocrSession lazily creates its worker's engine on the first image and keeps
// it until the worker exits.
type ocrSession struct {
	factory OCRFactory
	engine  OCREngine
	err     error
}

func newOCRSession(factory OCRFactory) *ocrSession {
	return &ocrSession{factory: factory}
}

func (s *ocrSession) recognize(image []byte) (string, error) {
	if s.engine == nil && s.err == nil {
		if s.factory == nil {
			s.err = ErrFeatureDisabled
		} else {
			s.engine, s.err = s.factory()
		}
	}
	if s.err != nil {
		return "", &ExtractError{Kind: ErrFeatureDisabled, Err: s.err}
	}

	text, err := s.engine.Recognize(image)
	if err != nil {
		return "", corrupt("ocr: %w", err)
	}
	return text, nil
}

// close releases the engine, if one was ever created.
func (s *ocrSession) close() error {
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}
