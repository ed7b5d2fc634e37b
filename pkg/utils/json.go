package utils

import (
	"encoding/json"
)

// StableJSON serializa um valor em JSON canônico (chaves de objetos em
// ordem determinística), para comparação campo a campo sem falsos positivos.
// O valor é normalizado via round-trip por tipos genéricos antes do marshal
// final, já que encoding/json ordena as chaves de mapas.
func StableJSON(v any) string {
	if v == nil {
		return ""
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return string(raw)
	}

	if normalized == nil {
		return ""
	}

	stable, err := json.Marshal(normalized)
	if err != nil {
		return string(raw)
	}

	return string(stable)
}

// JSONEquals compara dois valores pela serialização canônica, tratando
// nil/ausente como equivalentes para evitar ruído no primeiro sync.
func JSONEquals(a, b any) bool {
	return StableJSON(a) == StableJSON(b)
}
