package constants

const (
	ResourceNotFound    = `{"success":false,"message":"Nothing here. That resource does not exist or was deleted."}`
	EndpointNotFound    = `{"success":false,"message":"Nothing here. Check the path, this endpoint does not exist."}`
	BadRequest          = `{"success":false,"message":"That request does not look right."}`
	Forbidden           = `{"success":false,"message":"You are not allowed to change this resource."}`
	Unauthorized        = `{"success":false,"message":"Log in first. Send a session token in the Authorization header."}`
	Conflict            = `{"success":false,"message":"That change conflicts with existing data."}`
	InternalServerError = `{"success":false,"message":"Something went wrong on our end."}`
	MethodNotAllowed    = `{"success":false,"message":"That method is not allowed for this endpoint."}`
	BodyRequired        = `{"success":false,"message":"A body is required for this endpoint."}`
	TooManyRequests     = `{"success":false,"message":"Slow down. Too many requests from this address."}`
)
