package elevmetadata

import (
	"encoding/json"
	"fmt"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
)

var Log = logger.GetLogger()

type BuildingMetaData struct {
	SoftwareVersion string `json:"software_version"`
	Identifier      string `json:"identifier"`
	RunID           string `json:"run_id"`
	LowestFloor     int    `json:"lowest_floor"`
	HighestFloor    int    `json:"highest_floor"`
}

func (metaData *BuildingMetaData) String() string {
	jsonData, err := json.Marshal(metaData)

	if err != nil {
		Log.Error().Msg("Error Serialising BuildingMetaData Object to JSON")
		return ""
	}
	return string(jsonData)
}

func (metaData *BuildingMetaData) GetFloorRange() string {
	return fmt.Sprintf("[%d, %d]", metaData.LowestFloor, metaData.HighestFloor)
}

func (metaData *BuildingMetaData) FloorCount() int {
	return metaData.HighestFloor - metaData.LowestFloor + 1
}
