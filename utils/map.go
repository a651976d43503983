package utils

// MapCopy deep-copies nested string maps so stored documents never alias
// request payloads.
func MapCopy(originalMap map[string]interface{}) map[string]interface{} {
	if len(originalMap) == 0 {
		return originalMap
	}
	targetMap := make(map[string]interface{}, len(originalMap))

	for key, value := range originalMap {
		switch v := value.(type) {
		case map[string]interface{}:
			value = MapCopy(v)
		}
		targetMap[key] = value
	}
	return targetMap
}
