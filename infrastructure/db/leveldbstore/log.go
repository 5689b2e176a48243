package leveldbstore

import "github.com/lightrelay/plcs/infrastructure/logger"

var log = logger.RegisterSubSystem("CDBS")
