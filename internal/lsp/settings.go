package lsp

import "encoding/json"

type inlayConfig struct {
	varTypes   bool
	fieldTypes bool
}

func defaultInlayConfig() inlayConfig {
	return inlayConfig{varTypes: true}
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings reads the "hxinfer" section; missing keys keep their
// current values.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	hx := settings.Hxinfer
	if hx.InlayHints.VarTypes != nil {
		s.inlay.varTypes = *hx.InlayHints.VarTypes
	}
	if hx.InlayHints.FieldTypes != nil {
		s.inlay.fieldTypes = *hx.InlayHints.FieldTypes
	}
	if hx.Trace != nil {
		s.traceLSP = *hx.Trace
	}
}
