package reverseblockapplier

import "github.com/lightrelay/plcs/infrastructure/logger"

var log = logger.RegisterSubSystem("RBAP")
