package aggregator

const defaultWorkerCount = 4
