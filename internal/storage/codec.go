package storage

import (
	"encoding/json"
	"errors"

	"harmonia/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeMelody(m model.MelodyRecord) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeMelody(data []byte) (model.MelodyRecord, error) {
	var melody model.MelodyRecord
	if err := json.Unmarshal(data, &melody); err != nil {
		return model.MelodyRecord{}, err
	}
	if err := checkVersion(melody.VersionedRecord); err != nil {
		return model.MelodyRecord{}, err
	}
	return melody, nil
}

func EncodeVocabulary(v model.VocabularyRecord) ([]byte, error) {
	return json.Marshal(v)
}

func DecodeVocabulary(data []byte) (model.VocabularyRecord, error) {
	var vocabulary model.VocabularyRecord
	if err := json.Unmarshal(data, &vocabulary); err != nil {
		return model.VocabularyRecord{}, err
	}
	if err := checkVersion(vocabulary.VersionedRecord); err != nil {
		return model.VocabularyRecord{}, err
	}
	return vocabulary, nil
}

func EncodeHarmonization(h model.HarmonizationRecord) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeHarmonization(data []byte) (model.HarmonizationRecord, error) {
	var harmonization model.HarmonizationRecord
	if err := json.Unmarshal(data, &harmonization); err != nil {
		return model.HarmonizationRecord{}, err
	}
	if err := checkVersion(harmonization.VersionedRecord); err != nil {
		return model.HarmonizationRecord{}, err
	}
	return harmonization, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
