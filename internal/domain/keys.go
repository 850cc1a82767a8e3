package domain

// KeyPrefix namespaces every key jobsift writes to a shared store.
const KeyPrefix = "jobsift:"
