package features

import (
	"strings"

	"todoapi/backend/pkg/config"
)

// Nomes das features conhecidas (sem o prefixo FEATURE_).
const (
	// SESEmail entrega o link de reset de senha via AWS SES em vez do console.
	SESEmail = "SES_EMAIL"
)

// IsEnabled verifica se um feature toggle está habilitado em cfg.
// Uma feature não definida é considerada desabilitada. A busca ignora maiúsculas/minúsculas.
func IsEnabled(cfg *config.AppConfig, featureName string) bool {
	enabled, _ := GetFeatureToggleState(cfg, featureName)
	return enabled
}

// GetFeatureToggleState retorna o estado de um feature toggle e se ele existe,
// para distinguir uma feature explicitamente desabilitada de uma não configurada.
func GetFeatureToggleState(cfg *config.AppConfig, featureName string) (enabled bool, exists bool) {
	if cfg == nil || cfg.FeatureToggles == nil {
		return false, false
	}
	enabled, exists = cfg.FeatureToggles[strings.ToUpper(featureName)]
	return enabled, exists
}
