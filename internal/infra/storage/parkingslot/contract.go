package parkingslot

import "github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
